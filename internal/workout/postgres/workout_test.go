package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fitstack/fitness-platform/internal/workout"
)

func TestWorkoutRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WorkoutRepository Suite")
}

type SQLiteWorkout struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null;index"`
	Name        string     `gorm:"not null"`
	Notes       string     `gorm:"column:notes"`
	DurationMin int        `gorm:"column:duration_min"`
	PerformedAt *time.Time `gorm:"column:performed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SQLiteWorkout) TableName() string { return "workouts" }

var _ = Describe("WorkoutRepository", func() {
	var (
		db   *gorm.DB
		repo *Repository
	)

	createWorkout := func(userID int64, name string) *workout.Workout {
		w := &workout.Workout{
			UserID:      userID,
			Name:        name,
			DurationMin: 45,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		Expect(repo.Create(w)).To(Succeed())
		return w
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteWorkout{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and GetByID", func() {
		It("should round-trip a workout", func() {
			created := createWorkout(1, "Morning run")
			Expect(created.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Morning run"))
			Expect(got.DurationMin).To(Equal(45))
		})

		It("should return ErrNotFound for a missing id", func() {
			_, err := repo.GetByID(9999)
			Expect(err).To(MatchError(workout.ErrNotFound))
		})
	})

	Describe("ListByUser", func() {
		It("should return only the user's workouts", func() {
			createWorkout(1, "Run")
			createWorkout(1, "Lift")
			createWorkout(2, "Swim")

			list, err := repo.ListByUser(1, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})

		It("should honor limit and offset", func() {
			for i := 0; i < 5; i++ {
				createWorkout(1, "Session")
			}

			list, err := repo.ListByUser(1, 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))

			list, err = repo.ListByUser(1, 10, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})
	})

	Describe("Update", func() {
		It("should persist changed fields", func() {
			created := createWorkout(1, "Run")
			created.Name = "Long run"
			created.DurationMin = 90
			created.UpdatedAt = time.Now()

			Expect(repo.Update(created)).To(Succeed())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Long run"))
			Expect(got.DurationMin).To(Equal(90))
		})

		It("should return ErrNotFound for a missing workout", func() {
			err := repo.Update(&workout.Workout{ID: 9999, Name: "ghost"})
			Expect(err).To(MatchError(workout.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the workout", func() {
			created := createWorkout(1, "Run")
			Expect(repo.Delete(created.ID)).To(Succeed())

			_, err := repo.GetByID(created.ID)
			Expect(err).To(MatchError(workout.ErrNotFound))
		})

		It("should return ErrNotFound for a missing workout", func() {
			Expect(repo.Delete(9999)).To(MatchError(workout.ErrNotFound))
		})
	})
})
