package contracts

import "time"

// Universe represents the securities eligible for trading on a date
// ⭐ SSOT: S0 외부 협력자 → S2 랭커 (거래 가능 필터는 외부 책임)
type Universe struct {
	Date       time.Time `json:"date"`
	Securities []string  `json:"securities"`
}

// Contains checks if a security is in the universe
func (u *Universe) Contains(security string) bool {
	for _, s := range u.Securities {
		if s == security {
			return true
		}
	}
	return false
}

// Count returns the number of securities
func (u *Universe) Count() int {
	return len(u.Securities)
}

// Set returns the universe as a lookup set
func (u *Universe) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Securities))
	for _, s := range u.Securities {
		set[s] = struct{}{}
	}
	return set
}
