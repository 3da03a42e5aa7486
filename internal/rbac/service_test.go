package rbac

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fitstack/fitness-platform/internal/core/events"
)

func TestRBAC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RBAC Module Suite")
}

// Mock Repository for testing
type mockRepository struct {
	rolePerms   map[int64][]Permission
	directPerms map[int64][]Permission
	exactPairs  map[string]bool

	upsertedRoles       []int64
	upsertedPermissions []int64
	deactivatedRoles    []int64
	deactivatedPerms    []int64

	returnError   bool
	errorToReturn error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		rolePerms:   make(map[int64][]Permission),
		directPerms: make(map[int64][]Permission),
		exactPairs:  make(map[string]bool),
	}
}

func (m *mockRepository) GetRolePermissionsForUser(userID int64) ([]Permission, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.rolePerms[userID], nil
}

func (m *mockRepository) GetDirectPermissionsForUser(userID int64) ([]Permission, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.directPerms[userID], nil
}

func (m *mockRepository) UpsertUserRole(userID, roleID, assignedBy int64, assignedAt time.Time, opts AssignmentOptions) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.upsertedRoles = append(m.upsertedRoles, roleID)
	return nil
}

func (m *mockRepository) DeactivateUserRole(userID, roleID int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.deactivatedRoles = append(m.deactivatedRoles, roleID)
	return nil
}

func (m *mockRepository) UpsertUserPermission(userID, permissionID, grantedBy int64, grantedAt time.Time, opts AssignmentOptions) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.upsertedPermissions = append(m.upsertedPermissions, permissionID)
	return nil
}

func (m *mockRepository) DeactivateUserPermission(userID, permissionID int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.deactivatedPerms = append(m.deactivatedPerms, permissionID)
	return nil
}

func (m *mockRepository) GetRolePermissions(roleID int64) ([]Permission, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.rolePerms[roleID], nil
}

func (m *mockRepository) HasExactPermission(userID int64, resource, action string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	return m.exactPairs[resource+":"+action], nil
}

func (m *mockRepository) CreateRole(role *Role) error          { return nil }
func (m *mockRepository) CreatePermission(p *Permission) error { return nil }
func (m *mockRepository) AddPermissionToRole(r, p int64) error { return nil }

var _ = Describe("Service", func() {
	var (
		service *Service
		repo    *mockRepository
	)

	BeforeEach(func() {
		repo = newMockRepository()
		service = NewService(repo, nil, slog.Default())
	})

	Describe("GetUserPermissions", func() {
		It("should union role-derived and direct permissions", func() {
			repo.rolePerms[1] = []Permission{
				{ID: 10, Name: "workout_read", Resource: "workout", Action: "read"},
			}
			repo.directPerms[1] = []Permission{
				{ID: 20, Name: "workout_create", Resource: "workout", Action: "create"},
			}

			perms, err := service.GetUserPermissions(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(HaveLen(2))
		})

		It("should deduplicate by permission id with the direct grant winning", func() {
			repo.rolePerms[1] = []Permission{
				{ID: 10, Name: "workout_read", DisplayName: "from role", Resource: "workout", Action: "read"},
			}
			repo.directPerms[1] = []Permission{
				{ID: 10, Name: "workout_read", DisplayName: "from grant", Resource: "workout", Action: "read"},
			}

			perms, err := service.GetUserPermissions(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(HaveLen(1))
			Expect(perms[0].DisplayName).To(Equal("from grant"))
		})

		It("should return an empty set for a user with nothing assigned", func() {
			perms, err := service.GetUserPermissions(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
		})

		It("should wrap repository errors", func() {
			repo.returnError = true
			repo.errorToReturn = errors.New("db down")

			perms, err := service.GetUserPermissions(1)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("db down"))
			Expect(perms).To(BeNil())
		})
	})

	Describe("AssignRole", func() {
		It("should upsert the assignment", func() {
			err := service.AssignRole(1, 2, 99, AssignmentOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.upsertedRoles).To(Equal([]int64{2}))
		})

		It("should not fail when the role is already assigned", func() {
			Expect(service.AssignRole(1, 2, 99, AssignmentOptions{})).To(Succeed())
			Expect(service.AssignRole(1, 2, 99, AssignmentOptions{})).To(Succeed())
			Expect(repo.upsertedRoles).To(HaveLen(2))
		})
	})

	Describe("RemoveRole", func() {
		It("should soft-revoke the assignment", func() {
			err := service.RemoveRole(1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.deactivatedRoles).To(Equal([]int64{2}))
		})

		It("should succeed for a role that was never assigned", func() {
			Expect(service.RemoveRole(1, 999)).To(Succeed())
		})
	})

	Describe("GrantPermission and RevokePermission", func() {
		It("should upsert and deactivate direct grants", func() {
			Expect(service.GrantPermission(1, 7, 99, AssignmentOptions{})).To(Succeed())
			Expect(repo.upsertedPermissions).To(Equal([]int64{7}))

			Expect(service.RevokePermission(1, 7)).To(Succeed())
			Expect(repo.deactivatedPerms).To(Equal([]int64{7}))
		})
	})

	Describe("HasPermission", func() {
		It("should report an exact match", func() {
			repo.exactPairs["workout:read"] = true

			ok, err := service.HasPermission(1, "workout", "read")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should not apply wildcard matching", func() {
			// user holds only the wildcard pair
			repo.exactPairs["*:*"] = true

			ok, err := service.HasPermission(1, "workout", "read")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should wrap repository errors", func() {
			repo.returnError = true
			repo.errorToReturn = errors.New("db down")

			ok, err := service.HasPermission(1, "workout", "read")
			Expect(err).To(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("Permission", func() {
	Describe("Matches", func() {
		It("should honor wildcards on resource and action", func() {
			all := Permission{Resource: "*", Action: "*"}
			Expect(all.Matches("workout", "read")).To(BeTrue())

			anyAction := Permission{Resource: "workout", Action: "*"}
			Expect(anyAction.Matches("workout", "delete")).To(BeTrue())
			Expect(anyAction.Matches("user", "delete")).To(BeFalse())
		})
	})

	Describe("MatchesExactly", func() {
		It("should ignore wildcard semantics", func() {
			all := Permission{Resource: "*", Action: "*"}
			Expect(all.MatchesExactly("workout", "read")).To(BeFalse())
			Expect(all.MatchesExactly("*", "*")).To(BeTrue())
		})
	})
})

var _ = Describe("Service events", func() {
	var (
		service  *Service
		repo     *mockRepository
		received chan events.Event
	)

	subscribe := func(bus *events.EventBus, eventTypes ...string) {
		for _, eventType := range eventTypes {
			bus.Subscribe(eventType, func(ctx context.Context, e events.Event) error {
				received <- e
				return nil
			})
		}
	}

	BeforeEach(func() {
		repo = newMockRepository()
		received = make(chan events.Event, 4)
	})

	It("should announce role assignment on the bus", func() {
		bus := events.NewEventBus(slog.Default())
		subscribe(bus, events.EventRoleAssigned)
		service = NewService(repo, bus, slog.Default())

		Expect(service.AssignRole(1, 10, 99, AssignmentOptions{})).To(Succeed())

		var evt events.Event
		Eventually(received).Should(Receive(&evt))
		Expect(evt.EventType()).To(Equal(events.EventRoleAssigned))
		payload := evt.Payload().(map[string]interface{})
		Expect(payload["user_id"]).To(Equal(int64(1)))
		Expect(payload["role_id"]).To(Equal(int64(10)))
		Expect(payload["assigned_by"]).To(Equal(int64(99)))
	})

	It("should announce role removal on the bus", func() {
		bus := events.NewEventBus(slog.Default())
		subscribe(bus, events.EventRoleRemoved)
		service = NewService(repo, bus, slog.Default())

		Expect(service.RemoveRole(1, 10)).To(Succeed())

		var evt events.Event
		Eventually(received).Should(Receive(&evt))
		Expect(evt.EventType()).To(Equal(events.EventRoleRemoved))
	})

	It("should announce direct grants and revocations", func() {
		bus := events.NewEventBus(slog.Default())
		subscribe(bus, events.EventPermissionChange)
		service = NewService(repo, bus, slog.Default())

		Expect(service.GrantPermission(1, 20, 99, AssignmentOptions{})).To(Succeed())

		var granted events.Event
		Eventually(received).Should(Receive(&granted))
		Expect(granted.Payload().(map[string]interface{})["change"]).To(Equal("granted"))

		Expect(service.RevokePermission(1, 20)).To(Succeed())

		var revoked events.Event
		Eventually(received).Should(Receive(&revoked))
		Expect(revoked.Payload().(map[string]interface{})["change"]).To(Equal("revoked"))
	})

	It("should not publish when the repository rejects the mutation", func() {
		bus := events.NewEventBus(slog.Default())
		subscribe(bus, events.EventRoleAssigned)
		service = NewService(repo, bus, slog.Default())

		repo.returnError = true
		repo.errorToReturn = errors.New("db down")

		Expect(service.AssignRole(1, 10, 99, AssignmentOptions{})).NotTo(Succeed())
		Consistently(received).ShouldNot(Receive())
	})
})
