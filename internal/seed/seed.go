package seed

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librarydb/internal/services"
)

// Load populates a fresh schema with a small working data set: four
// categories, three authored books, three members and two open loans,
// one of them past due. Loading twice changes nothing; every row is
// keyed on a unique column and skipped when already present.
func Load(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	categories := map[string]string{}
	for _, c := range seedCategories {
		id, err := ensureCategory(tx, c.name, c.description)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.name, err)
		}
		categories[c.name] = id
	}

	authors := map[string]string{}
	for _, a := range seedAuthors {
		id, err := ensureAuthor(tx, a)
		if err != nil {
			return fmt.Errorf("seed author %q: %w", a.email, err)
		}
		authors[a.email] = id
	}

	books := map[string]string{}
	for _, b := range seedBooks {
		id, err := ensureBook(tx, b, categories[b.category])
		if err != nil {
			return fmt.Errorf("seed book %q: %w", b.title, err)
		}
		books[b.title] = id
	}

	for _, l := range seedLinks {
		if err := ensureLink(tx, books[l.title], authors[l.authorEmail], l.role); err != nil {
			return fmt.Errorf("seed link %q: %w", l.title, err)
		}
	}

	members := map[string]string{}
	for _, m := range seedMembers {
		id, err := ensureMember(tx, m)
		if err != nil {
			return fmt.Errorf("seed member %q: %w", m.email, err)
		}
		members[m.email] = id
	}

	today := time.Now().UTC()
	loans := []loanSeed{
		// Three weeks out, one week past due.
		{bookTitle: "1984", memberEmail: "alice.johnson@example.com",
			loanDate: today.AddDate(0, 0, -21), dueDate: today.AddDate(0, 0, -7)},
		// Fresh loan, due in two weeks.
		{bookTitle: "Pride and Prejudice", memberEmail: "brian.chen@example.com",
			loanDate: today, dueDate: today.AddDate(0, 0, 14)},
	}
	for _, l := range loans {
		if err := ensureLoan(tx, books[l.bookTitle], members[l.memberEmail], l); err != nil {
			return fmt.Errorf("seed loan %q: %w", l.bookTitle, err)
		}
	}

	return tx.Commit()
}

type categorySeed struct {
	name        string
	description string
}

type authorSeed struct {
	firstName string
	lastName  string
	email     string
	birthDate time.Time
}

type bookSeed struct {
	title       string
	isbn        string
	year        int
	category    string
	totalCopies int
}

type linkSeed struct {
	title       string
	authorEmail string
	role        string
}

type memberSeed struct {
	firstName string
	lastName  string
	email     string
	phone     string
	address   string
}

type loanSeed struct {
	bookTitle   string
	memberEmail string
	loanDate    time.Time
	dueDate     time.Time
}

var seedCategories = []categorySeed{
	{"Fiction", "Novels and literary fiction"},
	{"Non-Fiction", "Essays, history and reportage"},
	{"Science Fiction", "Speculative and dystopian fiction"},
	{"Biography", "Lives told by others or themselves"},
}

var seedAuthors = []authorSeed{
	{"George", "Orwell", "george.orwell@example.com", time.Date(1903, time.June, 25, 0, 0, 0, 0, time.UTC)},
	{"Jane", "Austen", "jane.austen@example.com", time.Date(1775, time.December, 16, 0, 0, 0, 0, time.UTC)},
	{"Mark", "Twain", "mark.twain@example.com", time.Date(1835, time.November, 30, 0, 0, 0, 0, time.UTC)},
}

var seedBooks = []bookSeed{
	{"1984", "978-0451524935", 1949, "Science Fiction", 4},
	{"Pride and Prejudice", "978-0141439518", 1813, "Fiction", 3},
	{"Adventures of Huckleberry Finn", "978-0486280615", 1884, "Fiction", 2},
}

var seedLinks = []linkSeed{
	{"1984", "george.orwell@example.com", services.RolePrimaryAuthor},
	{"Pride and Prejudice", "jane.austen@example.com", services.RolePrimaryAuthor},
	{"Adventures of Huckleberry Finn", "mark.twain@example.com", services.RolePrimaryAuthor},
}

var seedMembers = []memberSeed{
	{"Alice", "Johnson", "alice.johnson@example.com", "+1-555-0134", "12 Birch Lane, Springfield"},
	{"Brian", "Chen", "brian.chen@example.com", "+1-555-0178", "48 Harbor St, Portland"},
	{"Carla", "Mendes", "carla.mendes@example.com", "", ""},
}

func ensureCategory(tx *sqlx.Tx, name, description string) (string, error) {
	var id string
	err := tx.Get(&id, `SELECT id FROM categories WHERE name = $1`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	_, err = tx.Exec(`
INSERT INTO categories (id, name, description, created_at)
VALUES ($1,$2,$3,$4)
`, id, name, description, time.Now().UTC())
	return id, err
}

func ensureAuthor(tx *sqlx.Tx, a authorSeed) (string, error) {
	var id string
	err := tx.Get(&id, `SELECT id FROM authors WHERE email = $1`, a.email)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	_, err = tx.Exec(`
INSERT INTO authors (id, first_name, last_name, email, birth_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, id, a.firstName, a.lastName, a.email, a.birthDate, time.Now().UTC())
	return id, err
}

func ensureBook(tx *sqlx.Tx, b bookSeed, categoryID string) (string, error) {
	var id string
	err := tx.Get(&id, `SELECT id FROM books WHERE isbn = $1`, b.isbn)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	_, err = tx.Exec(`
INSERT INTO books (id, title, isbn, publication_year, total_copies, available_copies, category_id, created_at)
VALUES ($1,$2,$3,$4,$5,$5,$6,$7)
`, id, b.title, b.isbn, b.year, b.totalCopies, categoryID, time.Now().UTC())
	return id, err
}

func ensureLink(tx *sqlx.Tx, bookID, authorID, role string) error {
	_, err := tx.Exec(`
INSERT INTO book_authors (book_id, author_id, role, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (book_id, author_id) DO NOTHING
`, bookID, authorID, role, time.Now().UTC())
	return err
}

func ensureMember(tx *sqlx.Tx, m memberSeed) (string, error) {
	var id string
	err := tx.Get(&id, `SELECT id FROM members WHERE email = $1`, m.email)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	var phone, address *string
	if m.phone != "" {
		phone = &m.phone
	}
	if m.address != "" {
		address = &m.address
	}
	id = uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.Exec(`
INSERT INTO members (id, first_name, last_name, email, phone, address, join_date, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, id, m.firstName, m.lastName, m.email, phone, address, now, services.MemberActive, now)
	return id, err
}

// ensureLoan opens the loan and takes its copy from the book, the same
// bookkeeping Checkout does, so seeded availability stays consistent.
func ensureLoan(tx *sqlx.Tx, bookID, memberID string, l loanSeed) error {
	var exists bool
	err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM loans WHERE book_id = $1 AND member_id = $2)`, bookID, memberID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = tx.Exec(`
INSERT INTO loans (id, book_id, member_id, loan_date, due_date, fine_amount, status, created_at)
VALUES ($1,$2,$3,$4,$5,0,$6,$7)
`, uuid.NewString(), bookID, memberID, l.loanDate, l.dueDate, services.LoanActive, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = tx.Exec(`UPDATE books SET available_copies = available_copies - 1 WHERE id = $1`, bookID)
	return err
}
