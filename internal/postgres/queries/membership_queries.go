package queries

const (
	QueryMembershipExists = `
		SELECT EXISTS(
			SELECT 1 FROM room_memberships
			WHERE room_id = $1 AND user_id = $2
		);
	`
	QueryInsertMembership = `
		INSERT INTO room_memberships (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING;
	`
	QueryDeleteMembership = `
		DELETE FROM room_memberships
		WHERE room_id = $1 AND user_id = $2;
	`
	// last_read_id только растёт: GREATEST с текущим значением
	QueryMarkMembershipRead = `
		UPDATE room_memberships
		SET last_read_id = GREATEST(
			COALESCE(last_read_id, 0),
			COALESCE((SELECT MAX(id) FROM messages WHERE room_id = $1), 0)
		),
		    updated_at = now()
		WHERE room_id = $1 AND user_id = $2;
	`
	QueryGetMembership = `
		SELECT id, room_id, user_id, last_read_id, created_at, updated_at
		FROM room_memberships
		WHERE room_id = $1 AND user_id = $2;
	`
)
