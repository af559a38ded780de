package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (title, body, reviewable_type, reviewable_id, user_id, role, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

// Structure (target, role, author) is fixed after insert; only content moves.
const updateContentSQL = `
UPDATE reviews
SET title = ?, body = ?, updated_at = ?
WHERE id = ?
`

const deleteForReviewableSQL = `
DELETE FROM reviews
WHERE reviewable_type = ? AND reviewable_id = ?
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

var reviewColumns = []string{
	"id",
	"title",
	"body",
	"reviewable_type",
	"reviewable_id",
	"user_id",
	"role",
	"created_at",
	"updated_at",
}

const getReviewSQL = `
SELECT id, title, body, reviewable_type, reviewable_id, user_id, role, created_at, updated_at
FROM reviews
WHERE id = ?
`
