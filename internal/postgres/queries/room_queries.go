package queries

const (
	QueryCreateRoom = `
		INSERT INTO rooms (name, topic)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at;
	`
	QueryUpdateRoom = `
		UPDATE rooms
		SET name = $2, topic = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at;
	`
	QueryGetRoom = `
		SELECT id, name, topic, created_at, updated_at
		FROM rooms
		WHERE id = $1;
	`
	QueryListRooms = `
		SELECT id, name, topic, created_at, updated_at
		FROM rooms
		ORDER BY name ASC;
	`
	QueryFirstRoom = `
		SELECT id, name, topic, created_at, updated_at
		FROM rooms
		ORDER BY name ASC
		LIMIT 1;
	`
	QueryRoomNameTaken = `
		SELECT 1 FROM rooms
		WHERE name = $1 AND ($2::uuid IS NULL OR id <> $2);
	`
	QueryListRoomsWithJoined = `
		SELECT r.id, r.name, r.topic, r.created_at, r.updated_at,
		       (m.id IS NOT NULL) AS joined
		FROM rooms AS r
		LEFT JOIN room_memberships AS m
		       ON m.room_id = r.id AND m.user_id = $1
		ORDER BY r.name ASC
		LIMIT $2 OFFSET $3;
	`
	QueryListJoinedRoomsWithUnread = `
		SELECT r.id, r.name, r.topic, r.created_at, r.updated_at,
		       COUNT(msg.id) AS unread
		FROM rooms AS r
		JOIN room_memberships AS m
		  ON m.room_id = r.id AND m.user_id = $1
		LEFT JOIN messages AS msg
		  ON msg.room_id = r.id AND msg.id > COALESCE(m.last_read_id, 0)
		GROUP BY r.id, r.name, r.topic, r.created_at, r.updated_at
		ORDER BY r.name ASC;
	`
)
