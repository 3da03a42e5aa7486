package password

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitstack/fitness-platform/internal"
)

func TestPassword(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Password Manager Suite")
}

var _ = Describe("Manager", func() {
	var manager *Manager

	BeforeEach(func() {
		// MinCost keeps hashing fast in tests
		manager = NewManager(bcrypt.MinCost, internal.DefaultPasswordConfig())
	})

	Describe("HashPassword", func() {
		It("should produce a bcrypt hash that verifies", func() {
			hash, err := manager.HashPassword("Sup3rSecret!")
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).NotTo(BeEmpty())
			Expect(hash).NotTo(Equal("Sup3rSecret!"))

			ok, err := manager.VerifyPassword("Sup3rSecret!", hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should produce different hashes for the same password", func() {
			first, err := manager.HashPassword("Sup3rSecret!")
			Expect(err).NotTo(HaveOccurred())
			second, err := manager.HashPassword("Sup3rSecret!")
			Expect(err).NotTo(HaveOccurred())
			Expect(first).NotTo(Equal(second))
		})
	})

	Describe("VerifyPassword", func() {
		It("should return false without error for a wrong password", func() {
			hash, err := manager.HashPassword("Sup3rSecret!")
			Expect(err).NotTo(HaveOccurred())

			ok, err := manager.VerifyPassword("wrong_password", hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should return an error for a malformed hash", func() {
			ok, err := manager.VerifyPassword("Sup3rSecret!", "not-a-bcrypt-hash")
			Expect(err).To(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ValidateStrength", func() {
		It("should accept a password satisfying all rules", func() {
			result := manager.ValidateStrength("Sup3rSecret!")
			Expect(result.IsValid).To(BeTrue())
			Expect(result.Errors).To(BeEmpty())
		})

		It("should accumulate every violated rule", func() {
			// too short, no digit, no uppercase, no special char
			result := manager.ValidateStrength("abc")
			Expect(result.IsValid).To(BeFalse())
			Expect(result.Errors).To(HaveLen(4))
		})

		It("should report only the violated rules", func() {
			// long enough, has lowercase and digits; missing uppercase and special
			result := manager.ValidateStrength("abcdefg123")
			Expect(result.IsValid).To(BeFalse())
			Expect(result.Errors).To(HaveLen(2))
			Expect(result.Errors).To(ContainElement(ContainSubstring("uppercase")))
			Expect(result.Errors).To(ContainElement(ContainSubstring("special")))
		})

		It("should skip rules disabled in config", func() {
			manager = NewManager(bcrypt.MinCost, internal.PasswordConfig{
				MinLength:           8,
				RequireNumbers:      false,
				RequireUppercase:    false,
				RequireLowercase:    true,
				RequireSpecialChars: false,
			})

			result := manager.ValidateStrength("abcdefgh")
			Expect(result.IsValid).To(BeTrue())
			Expect(result.Errors).To(BeEmpty())
		})

		It("should enforce the configured minimum length", func() {
			manager = NewManager(bcrypt.MinCost, internal.PasswordConfig{
				MinLength: 12,
			})

			result := manager.ValidateStrength("Short1!")
			Expect(result.IsValid).To(BeFalse())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(ContainSubstring("12 characters"))
		})
	})

	Describe("GenerateSalt", func() {
		It("should generate unique hex salts", func() {
			first, err := manager.GenerateSalt()
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HaveLen(32))

			second, err := manager.GenerateSalt()
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(Equal(first))
		})
	})

	Describe("NewManager", func() {
		It("should fall back to the default cost when out of range", func() {
			m := NewManager(99, internal.DefaultPasswordConfig())
			Expect(m.cost).To(Equal(internal.DefaultBCryptCost))
		})
	})
})
