package domain

import "time"

// ProfileType distinguishes adult accounts from minor ("child") accounts.
// Child accounts route consent decisions through a guardian.
type ProfileType string

const (
	ProfileTypeAdult ProfileType = "adult"
	ProfileTypeChild ProfileType = "child"
)

// IsValid reports whether the profile type is a known value.
func (t ProfileType) IsValid() bool {
	return t == ProfileTypeAdult || t == ProfileTypeChild
}

// IsChild reports whether the profile requires guardian involvement for consent.
func (t ProfileType) IsChild() bool {
	return t == ProfileTypeChild
}

// ProfileTypeForBirthDate derives the profile type from a birth date. Uses
// calendar arithmetic (AddDate) for accurate birthday-boundary handling: a
// profile is adult from midnight UTC of its 18th birthday.
func ProfileTypeForBirthDate(birthDate, now time.Time) ProfileType {
	adultAt := birthDate.UTC().AddDate(18, 0, 0)
	if now.UTC().Before(adultAt) {
		return ProfileTypeChild
	}
	return ProfileTypeAdult
}
