package queries

const (
	QueryCreateMessage = `
		INSERT INTO messages (room_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	QueryGetMessage = `
		SELECT m.id, m.room_id, m.user_id, m.body, m.created_at, m.updated_at,
		       u.id, u.email, u.display_name, u.avatar_url, u.created_at, u.updated_at
		FROM messages AS m
		JOIN users AS u ON u.id = m.user_id
		WHERE m.id = $1;
	`
	// порядок (created_at, id) — id разрешает ничью при одинаковом времени
	QueryListMessagesByRoom = `
		SELECT m.id, m.room_id, m.user_id, m.body, m.created_at, m.updated_at,
		       u.id, u.email, u.display_name, u.avatar_url, u.created_at, u.updated_at
		FROM messages AS m
		JOIN users AS u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.created_at ASC, m.id ASC;
	`
	QueryDeleteMessage = `DELETE FROM messages WHERE id = $1;`
)
