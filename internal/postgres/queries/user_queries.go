package queries

const (
	QueryCreateUser = `
		INSERT INTO users (email, display_name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	QueryGetUserByID = `
		SELECT id, email, display_name, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1;
	`
	QueryGetUserByEmail = `
		SELECT id, email, display_name, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
)
