package models

import "time"

type Category struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type Author struct {
	ID        string     `db:"id"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	Email     string     `db:"email"`
	BirthDate *time.Time `db:"birth_date"`
	CreatedAt time.Time  `db:"created_at"`
}

type Book struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	ISBN            string    `db:"isbn"`
	PublicationYear *int      `db:"publication_year"`
	TotalCopies     int       `db:"total_copies"`
	AvailableCopies int       `db:"available_copies"`
	CategoryID      string    `db:"category_id"`
	CreatedAt       time.Time `db:"created_at"`
}

type BookAuthor struct {
	BookID    string    `db:"book_id"`
	AuthorID  string    `db:"author_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

type Member struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone"`
	Address   *string   `db:"address"`
	JoinDate  time.Time `db:"join_date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

type Loan struct {
	ID         string     `db:"id"`
	BookID     string     `db:"book_id"`
	MemberID   string     `db:"member_id"`
	LoanDate   time.Time  `db:"loan_date"`
	DueDate    time.Time  `db:"due_date"`
	ReturnDate *time.Time `db:"return_date"`
	FineAmount float64    `db:"fine_amount"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
}

// BookDetails is a row of the book_details view.
type BookDetails struct {
	BookID          string `db:"book_id"`
	Title           string `db:"title"`
	ISBN            string `db:"isbn"`
	PublicationYear *int   `db:"publication_year"`
	Category        string `db:"category"`
	Authors         string `db:"authors"`
	TotalCopies     int    `db:"total_copies"`
	AvailableCopies int    `db:"available_copies"`
}

// ActiveLoan is a row of the active_loans view. DaysOverdue is negative while
// the loan is not yet due.
type ActiveLoan struct {
	LoanID      string    `db:"loan_id"`
	MemberName  string    `db:"member_name"`
	MemberEmail string    `db:"member_email"`
	BookTitle   string    `db:"book_title"`
	LoanDate    time.Time `db:"loan_date"`
	DueDate     time.Time `db:"due_date"`
	DaysOverdue int       `db:"days_overdue"`
}
