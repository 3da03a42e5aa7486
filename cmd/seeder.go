package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed roles, permissions and sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_permissions", "user_roles", "role_permissions", "sessions", "workouts"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared assignment and session data")
		}

		roles := []struct {
			Name        string
			DisplayName string
			Desc        string
			Level       int
		}{
			{"admin", "Administrator", "full platform administrator", 100},
			{"trainer", "Trainer", "can manage client workouts", 50},
			{"member", "Member", "regular platform member", 10},
		}

		for _, r := range roles {
			var exists int
			row := db.Raw("SELECT 1 FROM roles WHERE name = ?", r.Name).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec(
					"INSERT INTO roles (name, display_name, description, level, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
					r.Name, r.DisplayName, r.Desc, r.Level,
				).Error; err != nil {
					log.Fatalf("failed to insert role %s: %v", r.Name, err)
				}
				fmt.Println("Seeded role:", r.Name)
			}
		}

		permissions := []struct {
			Name        string
			DisplayName string
			Resource    string
			Action      string
		}{
			{"platform_admin", "Platform Admin", "*", "*"},
			{"workout_create", "Create Workouts", "workout", "create"},
			{"workout_read", "View Own Workouts", "workout", "read"},
			{"workout_read_all", "View All Workouts", "workout", "read_all"},
			{"workout_update", "Edit Workouts", "workout", "update"},
			{"workout_delete", "Delete Workouts", "workout", "delete"},
			{"workout_manage_all", "Manage Any Workout", "workout", "*"},
			{"user_read", "View Users", "user", "read"},
			{"user_manage", "Manage Users", "user", "*"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec(
					"INSERT INTO permissions (name, display_name, resource, action, is_active, created_at) VALUES (?, ?, ?, ?, true, now())",
					p.Name, p.DisplayName, p.Resource, p.Action,
				).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
				fmt.Println("Seeded permission:", p.Name)
			}
		}

		rolePermissions := map[string][]string{
			"admin":   {"platform_admin"},
			"trainer": {"workout_create", "workout_read", "workout_read_all", "workout_update"},
			"member":  {"workout_create", "workout_read", "workout_update", "workout_delete"},
		}

		for roleName, permNames := range rolePermissions {
			var roleID int64
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", roleName).Row().Scan(&roleID); err != nil {
				log.Fatalf("role not found %s: %v", roleName, err)
			}
			for _, permName := range permNames {
				var pid int64
				if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
					log.Fatalf("permission not found %s: %v", permName, err)
				}

				var exists int
				if err := db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, pid).Row().Scan(&exists); err == nil {
					continue
				}

				if err := db.Exec(
					"INSERT INTO role_permissions (role_id, permission_id, is_active, created_at) VALUES (?, ?, true, now())",
					roleID, pid,
				).Error; err != nil {
					log.Fatalf("failed to map permission %s to role %s: %v", permName, roleName, err)
				}
			}
		}
		fmt.Println("Mapped role permissions")

		password := "Password1!"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email string
			Name  string
			Role  string
		}{
			{"admin@fitstack.io", "Platform Admin", "admin"},
			{"trainer@fitstack.io", "Taylor Trainer", "trainer"},
			{"member@fitstack.io", "Morgan Member", "member"},
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec(
					"INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
					u.Email, u.Name, string(hash),
				).Error; err != nil {
					log.Fatalf("failed to insert user %s: %v", u.Email, err)
				}
				fmt.Println("Seeded user:", u.Email)
			}

			var userID int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row().Scan(&userID); err != nil {
				log.Fatalf("failed to lookup user id for %s: %v", u.Email, err)
			}

			var roleID int64
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", u.Role).Row().Scan(&roleID); err != nil {
				log.Fatalf("role not found %s: %v", u.Role, err)
			}

			if err := db.Raw("SELECT 1 FROM user_roles WHERE user_id = ? AND role_id = ?", userID, roleID).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec(
				"INSERT INTO user_roles (user_id, role_id, assigned_by, assigned_at, is_active) VALUES (?, ?, ?, now(), true)",
				userID, roleID, userID,
			).Error; err != nil {
				log.Fatalf("failed to assign role %s to %s: %v", u.Role, u.Email, err)
			}
			fmt.Printf("Assigned role %s to %s\n", u.Role, u.Email)
		}

		fmt.Println("Seeding complete")
	},
}
