package schema

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The full lending schema: six tables, five indexes, two views. Statements
// are idempotent and ordered so that every foreign key target exists before
// its referencing table.

const createCategories = `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT uq_categories_name UNIQUE (name)
)`

const createAuthors = `
CREATE TABLE IF NOT EXISTS authors (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL,
  birth_date DATE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT uq_authors_email UNIQUE (email),
  CONSTRAINT chk_authors_email CHECK (email LIKE '%@%' AND email LIKE '%.%')
)`

const createBooks = `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  isbn TEXT NOT NULL,
  publication_year INT,
  total_copies INT NOT NULL DEFAULT 1,
  available_copies INT NOT NULL DEFAULT 1,
  category_id TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT uq_books_isbn UNIQUE (isbn),
  CONSTRAINT chk_books_copies CHECK (available_copies >= 0 AND available_copies <= total_copies),
  CONSTRAINT fk_books_category FOREIGN KEY (category_id)
    REFERENCES categories (id) ON DELETE RESTRICT
)`

const createBookAuthors = `
CREATE TABLE IF NOT EXISTS book_authors (
  book_id TEXT NOT NULL,
  author_id TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'Primary Author',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT pk_book_authors PRIMARY KEY (book_id, author_id),
  CONSTRAINT chk_book_authors_role CHECK (role IN ('Primary Author', 'Co-Author', 'Editor')),
  CONSTRAINT fk_book_authors_book FOREIGN KEY (book_id)
    REFERENCES books (id) ON DELETE CASCADE ON UPDATE CASCADE,
  CONSTRAINT fk_book_authors_author FOREIGN KEY (author_id)
    REFERENCES authors (id) ON DELETE CASCADE ON UPDATE CASCADE
)`

const createMembers = `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  join_date DATE NOT NULL DEFAULT CURRENT_DATE,
  status TEXT NOT NULL DEFAULT 'Active',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT uq_members_email UNIQUE (email),
  CONSTRAINT chk_members_email CHECK (email LIKE '%@%' AND email LIKE '%.%'),
  CONSTRAINT chk_members_status CHECK (status IN ('Active', 'Suspended', 'Expired'))
)`

const createLoans = `
CREATE TABLE IF NOT EXISTS loans (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL,
  member_id TEXT NOT NULL,
  loan_date DATE NOT NULL DEFAULT CURRENT_DATE,
  due_date DATE NOT NULL,
  return_date DATE,
  fine_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'Active',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT chk_loans_due CHECK (due_date > loan_date),
  CONSTRAINT chk_loans_return CHECK (return_date IS NULL OR return_date >= loan_date),
  CONSTRAINT chk_loans_fine CHECK (fine_amount >= 0),
  CONSTRAINT chk_loans_status CHECK (status IN ('Active', 'Returned', 'Overdue')),
  CONSTRAINT fk_loans_book FOREIGN KEY (book_id)
    REFERENCES books (id) ON DELETE RESTRICT,
  CONSTRAINT fk_loans_member FOREIGN KEY (member_id)
    REFERENCES members (id) ON DELETE RESTRICT
)`

// book_details joins every book to its category and aggregates author full
// names into one comma separated column. Inner joins, so a book with no
// linked author does not appear.
const createBookDetails = `
CREATE OR REPLACE VIEW book_details AS
SELECT
  b.id AS book_id,
  b.title,
  b.isbn,
  b.publication_year,
  c.name AS category,
  string_agg(a.first_name || ' ' || a.last_name, ', ' ORDER BY a.last_name, a.first_name) AS authors,
  b.total_copies,
  b.available_copies
FROM books b
JOIN categories c ON c.id = b.category_id
JOIN book_authors ba ON ba.book_id = b.id
JOIN authors a ON a.id = ba.author_id
GROUP BY b.id, b.title, b.isbn, b.publication_year, c.name, b.total_copies, b.available_copies`

// active_loans reports every loan still marked Active together with the
// member and book it belongs to. days_overdue is measured against the current
// date: negative until the due date, positive after it. The view never
// touches the status column.
const createActiveLoans = `
CREATE OR REPLACE VIEW active_loans AS
SELECT
  l.id AS loan_id,
  m.first_name || ' ' || m.last_name AS member_name,
  m.email AS member_email,
  b.title AS book_title,
  l.loan_date,
  l.due_date,
  (CURRENT_DATE - l.due_date) AS days_overdue
FROM loans l
JOIN members m ON m.id = l.member_id
JOIN books b ON b.id = l.book_id
WHERE l.status = 'Active'`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`,
	`CREATE INDEX IF NOT EXISTS idx_books_isbn ON books (isbn)`,
	`CREATE INDEX IF NOT EXISTS idx_members_email ON members (email)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_status ON loans (status)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_due_date ON loans (due_date)`,
}

// Apply creates the whole schema in a single transaction. Every statement is
// idempotent, so applying over an existing database is a no-op.
func Apply(db *sqlx.DB) error {
	statements := []string{
		createCategories,
		createAuthors,
		createBooks,
		createBookAuthors,
		createMembers,
		createLoans,
	}
	statements = append(statements, indexes...)
	statements = append(statements, createBookDetails, createActiveLoans)

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}

// Drop removes the views and tables in dependency order.
func Drop(db *sqlx.DB) error {
	statements := []string{
		`DROP VIEW IF EXISTS active_loans`,
		`DROP VIEW IF EXISTS book_details`,
		`DROP TABLE IF EXISTS loans`,
		`DROP TABLE IF EXISTS members`,
		`DROP TABLE IF EXISTS book_authors`,
		`DROP TABLE IF EXISTS books`,
		`DROP TABLE IF EXISTS authors`,
		`DROP TABLE IF EXISTS categories`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	return nil
}

// Tables lists the base tables in the public schema.
func Tables(db *sqlx.DB) ([]string, error) {
	names := []string{}
	err := db.Select(&names, `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name
`)
	return names, err
}
