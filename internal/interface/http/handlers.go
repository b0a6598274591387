package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/lecture"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	lecturesvc "github.com/aslan-academy/academy-management/internal/service/lecture"
	studentsvc "github.com/aslan-academy/academy-management/internal/service/student"
)

const dateLayout = "2006-01-02"

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESPONSE MODELS
// ══════════════════════════════════════════════════════════════════════════════

type studentRequest struct {
	StudentID    string `json:"studentId"`
	Name         string `json:"name"`
	BirthDate    string `json:"birthDate"`
	Phone        string `json:"phone,omitempty"`
	ParentPhone  string `json:"parentPhone,omitempty"`
	Grade        string `json:"grade"`
	SpecialNotes string `json:"specialNotes,omitempty"`
}

type studentResponse struct {
	ID              string  `json:"id"`
	StudentID       string  `json:"studentId"`
	Name            string  `json:"name"`
	BirthDate       string  `json:"birthDate"`
	Phone           string  `json:"phone,omitempty"`
	ParentPhone     string  `json:"parentPhone,omitempty"`
	Grade           string  `json:"grade"`
	Division        string  `json:"division"`
	AttendanceCount int     `json:"attendanceCount"`
	AverageScore    float64 `json:"averageScore"`
	LetterGrade     string  `json:"letterGrade"`
	SpecialNotes    string  `json:"specialNotes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type scoreRequest struct {
	Score float64 `json:"score"`
}

type scheduleRequest struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type lectureRequest struct {
	Title     string            `json:"title"`
	Type      string            `json:"lectureType"`
	Subject   string            `json:"subject"`
	Schedules []scheduleRequest `json:"schedules"`
}

type scheduleResponse struct {
	ID        string `json:"id"`
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type lectureResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Type      string             `json:"lectureType"`
	Subject   string             `json:"subject"`
	TeacherID string             `json:"teacherId"`
	Schedules []scheduleResponse `json:"schedules"`
	CreatedAt string             `json:"createdAt"`
}

func toStudentResponse(st *student.Student) studentResponse {
	return studentResponse{
		ID:              st.ID,
		StudentID:       st.StudentID.String(),
		Name:            st.Name,
		BirthDate:       st.BirthDate.Format(dateLayout),
		Phone:           st.Phone.String(),
		ParentPhone:     st.ParentPhone.String(),
		Grade:           string(st.Grade),
		Division:        st.Division.String(),
		AttendanceCount: st.AttendanceCount,
		AverageScore:    st.AverageScore,
		LetterGrade:     student.LetterGrade(st.AverageScore),
		SpecialNotes:    st.SpecialNotes,
		CreatedAt:       st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       st.UpdatedAt.Format(time.RFC3339),
	}
}

func toStudentResponses(list []*student.Student) []studentResponse {
	out := make([]studentResponse, 0, len(list))
	for _, st := range list {
		out = append(out, toStudentResponse(st))
	}
	return out
}

func toLectureResponse(l *lecture.Lecture) lectureResponse {
	schedules := make([]scheduleResponse, 0, len(l.Schedules))
	for _, sch := range l.Schedules {
		schedules = append(schedules, scheduleResponse{
			ID:        sch.ID,
			DayOfWeek: strings.ToUpper(sch.DayOfWeek.String()),
			StartTime: sch.StartTime.String(),
			EndTime:   sch.EndTime.String(),
		})
	}
	return lectureResponse{
		ID:        l.ID,
		Title:     l.Title,
		Type:      string(l.Type),
		Subject:   string(l.Subject),
		TeacherID: l.TeacherID,
		Schedules: schedules,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
}

func toLectureResponses(list []*lecture.Lecture) []lectureResponse {
	out := make([]lectureResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLectureResponse(l))
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"uptime": s.Uptime().String(),
	}

	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var body studentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	req, err := toServiceRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	st, err := s.deps.Students.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStudentResponse(st))
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Students.Get(r.Context(), student.StudentID(r.PathValue("studentId")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponse(st))
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var body studentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	req, err := toServiceRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	st, err := s.deps.Students.Update(r.Context(), student.StudentID(r.PathValue("studentId")), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponse(st))
}

func (s *Server) handleCheckAttendance(w http.ResponseWriter, r *http.Request) {
	id := student.StudentID(r.PathValue("studentId"))
	if err := s.deps.Students.CheckAttendance(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"studentId": id.String(), "result": "checked in"})
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var body scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	id := student.StudentID(r.PathValue("studentId"))
	if err := s.deps.Students.UpdateScore(r.Context(), id, body.Score); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"studentId": id.String(), "result": "score recorded"})
}

func (s *Server) handleTopStudents(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Students.TopStudents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponses(list))
}

func (s *Server) handleDivisionType(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"division": s.deps.Students.DivisionType()})
}

// toServiceRequest validates the transport-level fields and converts them
// into domain values. Field-level business validation stays in the domain.
func toServiceRequest(body studentRequest) (studentsvc.Request, error) {
	var req studentsvc.Request

	if body.BirthDate != "" {
		birth, err := time.Parse(dateLayout, body.BirthDate)
		if err != nil {
			return req, shared.NewDomainError("student", "Parse", shared.ErrInvalidFormat, "birthDate must be formatted as YYYY-MM-DD")
		}
		req.BirthDate = birth
	}

	req.StudentID = student.StudentID(strings.TrimSpace(body.StudentID))
	req.Name = strings.TrimSpace(body.Name)
	req.Phone = student.Phone(strings.TrimSpace(body.Phone))
	req.ParentPhone = student.Phone(strings.TrimSpace(body.ParentPhone))
	req.Grade = student.Grade(strings.ToUpper(strings.TrimSpace(body.Grade)))
	req.SpecialNotes = body.SpecialNotes

	return req, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LECTURE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreateLecture(w http.ResponseWriter, r *http.Request) {
	var body lectureRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	req := lecturesvc.CreateRequest{
		Title:   strings.TrimSpace(body.Title),
		Type:    lecture.Type(strings.ToUpper(strings.TrimSpace(body.Type))),
		Subject: lecture.Subject(strings.ToUpper(strings.TrimSpace(body.Subject))),
	}

	for _, sch := range body.Schedules {
		day, err := parseWeekday(sch.DayOfWeek)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		start, err := lecture.ParseClockTime(sch.StartTime)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		end, err := lecture.ParseClockTime(sch.EndTime)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		req.Schedules = append(req.Schedules, lecturesvc.ScheduleRequest{
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
		})
	}

	l, err := s.deps.Lectures.CreateLecture(r.Context(), memberFrom(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLectureResponse(l))
}

func (s *Server) handleListLectures(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Lectures.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLectureResponses(list))
}

func (s *Server) handleMyLectures(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Lectures.ListByTeacher(r.Context(), memberFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLectureResponses(list))
}

func (s *Server) handleGetLecture(w http.ResponseWriter, r *http.Request) {
	l, err := s.deps.Lectures.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if l == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "lecture not found")
		return
	}

	writeJSON(w, http.StatusOK, toLectureResponse(l))
}

func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.deps.Lectures.CalendarEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	lectureID := r.PathValue("id")
	studentID := r.PathValue("studentId")

	if err := s.deps.Lectures.Enroll(r.Context(), memberFrom(r.Context()), lectureID, studentID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"lectureId": lectureID, "studentId": studentID, "result": "enrolled"})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	lectureID := r.PathValue("id")
	studentID := r.PathValue("studentId")

	if err := s.deps.Lectures.Withdraw(r.Context(), memberFrom(r.Context()), lectureID, studentID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"lectureId": lectureID, "studentId": studentID, "result": "withdrawn"})
}

func (s *Server) handleEnrolledStudents(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Lectures.EnrolledStudents(r.Context(), memberFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponses(list))
}

// parseWeekday accepts uppercase English day names ("MONDAY").
func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUNDAY":
		return time.Sunday, nil
	case "MONDAY":
		return time.Monday, nil
	case "TUESDAY":
		return time.Tuesday, nil
	case "WEDNESDAY":
		return time.Wednesday, nil
	case "THURSDAY":
		return time.Thursday, nil
	case "FRIDAY":
		return time.Friday, nil
	case "SATURDAY":
		return time.Saturday, nil
	default:
		return 0, shared.NewDomainError("lecture", "Parse", shared.ErrInvalidFormat, "dayOfWeek must be an uppercase day name")
	}
}
