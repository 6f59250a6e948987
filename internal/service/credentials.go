package service

import "golang.org/x/crypto/bcrypt"

// VerifyPassword reports whether the supplied password matches the stored
// credential. The normal path is a bcrypt comparison.
//
// When allowPlaintext is set and the stored value equals the supplied
// password exactly, the password is accepted without hashing. This is a
// compatibility escape for databases seeded with unhashed credentials in
// development; it must never be enabled where real accounts live.
func VerifyPassword(storedHash, supplied string, allowPlaintext bool) bool {
	if allowPlaintext && storedHash != "" && storedHash == supplied {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(supplied)) == nil
}

// HashPassword returns the bcrypt hash of a plaintext password. Used by
// the hash-password CLI command for seeding account rows.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
