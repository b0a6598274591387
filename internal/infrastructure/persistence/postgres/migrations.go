package postgres

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_members",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_students",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_lectures",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_lecture_students",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: MEMBERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS members (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	picture TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	provider_id TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'GUEST',
	api_token_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_members_email ON members(email);
CREATE INDEX IF NOT EXISTS idx_members_role ON members(role);
`

const migration001Down = `
DROP TABLE IF EXISTS members;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS students (
	id UUID PRIMARY KEY,
	student_no TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	birth_date DATE NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	parent_phone TEXT NOT NULL DEFAULT '',
	grade TEXT NOT NULL,
	division TEXT NOT NULL CHECK (division IN ('ELEMENTARY', 'MIDDLE')),
	attendance_count INTEGER NOT NULL DEFAULT 0,
	average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	special_notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_students_student_no ON students(student_no);
CREATE INDEX IF NOT EXISTS idx_students_division ON students(division);
CREATE INDEX IF NOT EXISTS idx_students_division_attendance
	ON students(division, attendance_count DESC);
CREATE INDEX IF NOT EXISTS idx_students_division_score
	ON students(division, average_score DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: LECTURES & SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS lectures (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	lecture_type TEXT NOT NULL CHECK (lecture_type IN ('ACADEMY', 'TUTORING', 'SPECIAL_LECTURE')),
	subject TEXT NOT NULL,
	teacher_id UUID NOT NULL REFERENCES members(id),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lectures_teacher ON lectures(teacher_id);
CREATE INDEX IF NOT EXISTS idx_lectures_subject ON lectures(subject);

CREATE TABLE IF NOT EXISTS lecture_schedules (
	id UUID PRIMARY KEY,
	lecture_id UUID NOT NULL REFERENCES lectures(id) ON DELETE CASCADE,
	day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	start_minutes SMALLINT NOT NULL CHECK (start_minutes BETWEEN 0 AND 1439),
	end_minutes SMALLINT NOT NULL CHECK (end_minutes BETWEEN 0 AND 1439),
	CHECK (start_minutes < end_minutes)
);

CREATE INDEX IF NOT EXISTS idx_lecture_schedules_lecture ON lecture_schedules(lecture_id);
`

const migration003Down = `
DROP TABLE IF EXISTS lecture_schedules;
DROP TABLE IF EXISTS lectures;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
CREATE TABLE IF NOT EXISTS lecture_students (
	id UUID PRIMARY KEY,
	lecture_id UUID NOT NULL REFERENCES lectures(id) ON DELETE CASCADE,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	registered_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	UNIQUE (lecture_id, student_id)
);

CREATE INDEX IF NOT EXISTS idx_lecture_students_lecture ON lecture_students(lecture_id);
CREATE INDEX IF NOT EXISTS idx_lecture_students_student ON lecture_students(student_id);
`

const migration004Down = `
DROP TABLE IF EXISTS lecture_students;
`
