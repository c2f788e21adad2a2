package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:now()"`
}

// Task is the database model for the tasks table.
// due_date is a plain DATE column; time-of-day is never stored.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID      uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	Title       string     `bun:"title,notnull"`
	Description string     `bun:"description,notnull,default:''"`
	Category    string     `bun:"category,notnull,default:''"`
	Priority    string     `bun:"priority,notnull,default:'Low'"`
	Status      string     `bun:"status,notnull,default:'Pending'"`
	DueDate     *time.Time `bun:"due_date,type:date"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:now()"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:now()"`
}
