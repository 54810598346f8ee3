package queries

const (
	QueryCreateReply = `
		INSERT INTO replies (message_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	QueryGetReply = `
		SELECT id, message_id, user_id, body, created_at, updated_at
		FROM replies
		WHERE id = $1;
	`
	QueryListRepliesByMessages = `
		SELECT r.id, r.message_id, r.user_id, r.body, r.created_at, r.updated_at,
		       u.id, u.email, u.display_name, u.avatar_url, u.created_at, u.updated_at
		FROM replies AS r
		JOIN users AS u ON u.id = r.user_id
		WHERE r.message_id = ANY($1)
		ORDER BY r.created_at ASC, r.id ASC;
	`
	QueryDeleteReply = `DELETE FROM replies WHERE id = $1;`
)
