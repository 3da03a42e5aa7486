package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fitstack/fitness-platform/internal/session"
)

func TestSessionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SessionRepository Suite")
}

type SQLiteSession struct {
	ID             string    `gorm:"primaryKey"`
	UserID         int64     `gorm:"column:user_id;not null;index"`
	RefreshTokenID string    `gorm:"column:refresh_token_id;not null;index"`
	UserAgent      string    `gorm:"column:user_agent"`
	IPAddress      string    `gorm:"column:ip_address"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	LastActiveAt   time.Time `gorm:"column:last_active_at"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
}

func (SQLiteSession) TableName() string { return "sessions" }

var _ = Describe("SessionRepository", func() {
	var (
		db   *gorm.DB
		repo session.Repository
		now  time.Time
	)

	newSession := func(id string, userID int64, refreshTokenID string, lastActive, expires time.Time) *session.Session {
		s := &session.Session{
			ID:             id,
			UserID:         userID,
			RefreshTokenID: refreshTokenID,
			UserAgent:      "test-agent",
			IPAddress:      "127.0.0.1",
			CreatedAt:      lastActive,
			LastActiveAt:   lastActive,
			ExpiresAt:      expires,
			IsActive:       true,
		}
		Expect(repo.Create(s)).To(Succeed())
		return s
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteSession{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("GetLive", func() {
		It("should return an active unexpired session", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))

			got, err := repo.GetLive("s1", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.UserID).To(Equal(int64(1)))
			Expect(got.RefreshTokenID).To(Equal("rt-1"))
		})

		It("should return ErrSessionNotFound for an expired session", func() {
			newSession("s1", 1, "rt-1", now, now.Add(-time.Minute))

			_, err := repo.GetLive("s1", now)
			Expect(err).To(MatchError(session.ErrSessionNotFound))
		})

		It("should return ErrSessionNotFound for a deactivated session", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))
			Expect(repo.Deactivate("s1")).To(Succeed())

			_, err := repo.GetLive("s1", now)
			Expect(err).To(MatchError(session.ErrSessionNotFound))
		})

		It("should return ErrSessionNotFound for a missing id", func() {
			_, err := repo.GetLive("missing", now)
			Expect(err).To(MatchError(session.ErrSessionNotFound))
		})
	})

	Describe("GetLiveByRefreshToken", func() {
		It("should find the session by its current token", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))

			got, err := repo.GetLiveByRefreshToken("rt-1", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("s1"))
		})

		It("should not find a token after rotation", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))
			Expect(repo.UpdateRefreshToken("s1", "rt-2")).To(Succeed())

			_, err := repo.GetLiveByRefreshToken("rt-1", now)
			Expect(err).To(MatchError(session.ErrSessionNotFound))

			got, err := repo.GetLiveByRefreshToken("rt-2", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("s1"))
		})
	})

	Describe("CountLive and OldestLive", func() {
		It("should count only live sessions of the user", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))
			newSession("s2", 1, "rt-2", now, now.Add(-time.Minute)) // expired
			newSession("s3", 2, "rt-3", now, now.Add(time.Hour))    // other user
			newSession("s4", 1, "rt-4", now, now.Add(time.Hour))
			Expect(repo.Deactivate("s4")).To(Succeed())

			count, err := repo.CountLive(1, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should pick the least recently active session", func() {
			newSession("old", 1, "rt-1", now.Add(-3*time.Hour), now.Add(time.Hour))
			newSession("mid", 1, "rt-2", now.Add(-2*time.Hour), now.Add(time.Hour))
			newSession("new", 1, "rt-3", now.Add(-1*time.Hour), now.Add(time.Hour))

			oldest, err := repo.OldestLive(1, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(oldest.ID).To(Equal("old"))
		})

		It("should return ErrSessionNotFound when the user has no live sessions", func() {
			_, err := repo.OldestLive(42, now)
			Expect(err).To(MatchError(session.ErrSessionNotFound))
		})
	})

	Describe("TouchActivity", func() {
		It("should update last_active_at on an active session", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))

			later := now.Add(30 * time.Minute)
			Expect(repo.TouchActivity("s1", later)).To(Succeed())

			var row SQLiteSession
			db.First(&row, "id = ?", "s1")
			Expect(row.LastActiveAt.Equal(later)).To(BeTrue())
		})

		It("should not touch a deactivated session", func() {
			s := newSession("s1", 1, "rt-1", now, now.Add(time.Hour))
			Expect(repo.Deactivate("s1")).To(Succeed())

			Expect(repo.TouchActivity("s1", now.Add(time.Hour))).To(Succeed())

			var row SQLiteSession
			db.First(&row, "id = ?", "s1")
			Expect(row.LastActiveAt.Equal(s.LastActiveAt)).To(BeTrue())
		})
	})

	Describe("DeactivateByUser", func() {
		It("should close all of the user's sessions", func() {
			newSession("s1", 1, "rt-1", now, now.Add(time.Hour))
			newSession("s2", 1, "rt-2", now, now.Add(time.Hour))
			newSession("s3", 2, "rt-3", now, now.Add(time.Hour))

			Expect(repo.DeactivateByUser(1)).To(Succeed())

			count, err := repo.CountLive(1, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())

			count, err = repo.CountLive(2, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("DeactivateExpired", func() {
		It("should close only expired active sessions and report the count", func() {
			newSession("live", 1, "rt-1", now, now.Add(time.Hour))
			newSession("expired1", 1, "rt-2", now, now.Add(-time.Minute))
			newSession("expired2", 2, "rt-3", now, now.Add(-time.Hour))

			affected, err := repo.DeactivateExpired(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(2)))

			_, err = repo.GetLive("live", now)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should affect nothing on a repeat pass", func() {
			newSession("expired", 1, "rt-1", now, now.Add(-time.Minute))

			affected, err := repo.DeactivateExpired(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(1)))

			affected, err = repo.DeactivateExpired(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(BeZero())
		})

		It("should treat a session expiring exactly now as expired", func() {
			newSession("boundary", 1, "rt-1", now, now)

			affected, err := repo.DeactivateExpired(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(1)))
		})
	})
})
