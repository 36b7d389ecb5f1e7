package assistantRepository

const (
	queryGetAllStudents = `
		SELECT
			id, first_name, last_name, slot, additional_slots,
			schedule_change, terminated_on, created_at, updated_at
		FROM students
		ORDER BY first_name, last_name
	`

	queryGetLessonsByDate = `
		SELECT
			id, student_id, lesson_date, lesson_time, duration_minutes,
			amount_cents, completed, note, created_at, updated_at
		FROM lessons
		WHERE lesson_date = :lesson_date
		ORDER BY lesson_time, id
	`

	queryGetAllLessons = `
		SELECT
			id, student_id, lesson_date, lesson_time, duration_minutes,
			amount_cents, completed, note, created_at, updated_at
		FROM lessons
		ORDER BY lesson_date, lesson_time, id
	`

	queryGetLessonByID = `
		SELECT
			id, student_id, lesson_date, lesson_time, duration_minutes,
			amount_cents, completed, note, created_at, updated_at
		FROM lessons
		WHERE id = :id
	`

	queryGetLessonByStudentAndDate = `
		SELECT
			id, student_id, lesson_date, lesson_time, duration_minutes,
			amount_cents, completed, note, created_at, updated_at
		FROM lessons
		WHERE student_id = :student_id AND lesson_date = :lesson_date
		ORDER BY created_at DESC
		LIMIT 1
	`

	queryCreateLesson = `
		INSERT INTO lessons (
			id, student_id, lesson_date, lesson_time, duration_minutes,
			amount_cents, completed, note, created_at, updated_at
		) VALUES (
			:id, :student_id, :lesson_date, :lesson_time, :duration_minutes,
			:amount_cents, :completed, :note, :created_at, :updated_at
		)
	`

	queryCreateCommand = `
		INSERT INTO assistant_commands (
			id, user_id, transcript, status, message, plan, created_at
		) VALUES (
			:id, :user_id, :transcript, :status, :message, :plan, :created_at
		)
	`

	queryGetCommandsByUserID = `
		SELECT
			id, user_id, transcript, status, message, plan, created_at
		FROM assistant_commands
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountCommandsByUserID = `
		SELECT COUNT(*)
		FROM assistant_commands
		WHERE user_id = :user_id
	`
)
