// Package models defines the persistent entities of the home library.
package models

import "github.com/IrishAnn-code/HomeLibrary/internal/store"

// ReadStatus is a user's progress with a book.
type ReadStatus string

const (
	StatusNotRead ReadStatus = "not_read"
	StatusReading ReadStatus = "reading"
	StatusRead    ReadStatus = "read"
)

// Valid reports whether s is one of the known read statuses.
func (s ReadStatus) Valid() bool {
	switch s {
	case StatusNotRead, StatusReading, StatusRead:
		return true
	}
	return false
}

// LibraryRole is a member's role inside a library.
type LibraryRole string

const (
	RoleOwner  LibraryRole = "owner"
	RoleMember LibraryRole = "member"
	RoleGuest  LibraryRole = "guest"
)

// User is an account. Email is optional; PasswordHash never leaves the API.
type User struct {
	store.BaseModel
	Username     string `json:"username" db:"username"`
	Email        string `json:"email,omitempty" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Firstname    string `json:"firstname,omitempty" db:"firstname"`
	Lastname     string `json:"lastname,omitempty" db:"lastname"`
	Slug         string `json:"slug" db:"slug"`
	TgID         int64  `json:"-" db:"tg_id"` // reserved for the Telegram bot
}

// Library is a named book collection. A non-empty PasswordHash makes it
// private: joining requires the password.
type Library struct {
	store.BaseModel
	Name         string `json:"name" db:"name"`
	Slug         string `json:"slug" db:"slug"`
	PasswordHash string `json:"-" db:"password_hash"`
	OwnerID      int64  `json:"owner_id" db:"owner_id"`
}

// IsPrivate reports whether joining the library requires a password.
func (l *Library) IsPrivate() bool { return l.PasswordHash != "" }

func (Library) TableName() string { return "libraries" }

// Membership links a user to a library with a role.
// (user_id, library_id) is unique.
type Membership struct {
	store.BaseModel
	UserID    int64       `json:"user_id" db:"user_id"`
	LibraryID int64       `json:"library_id" db:"library_id"`
	Role      LibraryRole `json:"role" db:"role"`
}

// Book is a shelved book. The physical location is address/room/shelf,
// e.g. "institut.13" / "saloon" / "3rd shelf".
type Book struct {
	store.BaseModel
	Author      string `json:"author" db:"author"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Genre       string `json:"genre,omitempty" db:"genre"`
	Color       string `json:"color,omitempty" db:"color"`
	LibAddress  string `json:"lib_address,omitempty" db:"lib_address"`
	Room        string `json:"room,omitempty" db:"room"`
	Shelf       string `json:"shelf,omitempty" db:"shelf"`
	Slug        string `json:"slug" db:"slug"`
	LibraryID   int64  `json:"library_id" db:"library_id"`
	UserID      int64  `json:"user_id" db:"user_id"`
}

// Comment is a user's note on a book.
type Comment struct {
	store.BaseModel
	Message string `json:"message" db:"message"`
	UserID  int64  `json:"user_id" db:"user_id"`
	BookID  int64  `json:"book_id" db:"book_id"`
}

// ReadingStatus records one user's read status for one book.
// A missing row reads as StatusNotRead.
type ReadingStatus struct {
	store.BaseModel
	UserID int64      `json:"user_id" db:"user_id"`
	BookID int64      `json:"book_id" db:"book_id"`
	Status ReadStatus `json:"status" db:"status"`
}

func (ReadingStatus) TableName() string { return "reading_statuses" }
