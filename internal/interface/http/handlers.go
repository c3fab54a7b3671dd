package http

import (
	"net/http"
	"time"

	"github.com/satyalok/attendance-hub/internal/application/command"
	"github.com/satyalok/attendance-hub/internal/application/query"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/report"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Attendance Hub API",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":     "/health",
			"attendance": "/api/v1/attendance",
			"report":     "/api/v1/report",
			"students":   "/api/v1/students",
			"teachers":   "/api/v1/teachers",
			"dashboard":  "/api/v1/dashboard",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().Round(time.Second).String(),
		"version": s.config.Version,
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordRequest struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

type submitAttendanceRequest struct {
	Area    string          `json:"area"`
	Date    string          `json:"date"`
	Records []recordRequest `json:"records"`
}

type submitAttendanceResponse struct {
	Status string `json:"status"`
	Area   string `json:"area"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
}

// handleSubmitAttendance handles POST /api/v1/attendance
func (s *Server) handleSubmitAttendance(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.SubmitAttendance == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Attendance handler not configured")
		return
	}

	var req submitAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	records := make([]command.RecordInput, len(req.Records))
	for i, rec := range req.Records {
		records[i] = command.RecordInput{StudentID: rec.StudentID, Status: rec.Status}
	}

	res, err := s.deps.SubmitAttendance.Handle(r.Context(), command.SubmitAttendanceCommand{
		Identity: id,
		Area:     req.Area,
		Date:     req.Date,
		Records:  records,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitAttendanceResponse{
		Status: "submitted",
		Area:   string(res.Area),
		Date:   res.Date,
		Count:  res.Count,
	})
}

type attendanceStatusResponse struct {
	Area      string              `json:"area"`
	Date      string              `json:"date"`
	Submitted bool                `json:"submitted"`
	Records   []attendance.Record `json:"records,omitempty"`
	CreatedAt *time.Time          `json:"createdAt,omitempty"`
}

// handleAttendanceStatus handles GET /api/v1/attendance/status?area=&date=
func (s *Server) handleAttendanceStatus(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.AttendanceStatus == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Status handler not configured")
		return
	}

	q := r.URL.Query()
	res, err := s.deps.AttendanceStatus.Handle(r.Context(), query.GetAttendanceStatusQuery{
		Identity: id,
		Area:     q.Get("area"),
		Date:     q.Get("date"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := attendanceStatusResponse{
		Area:      string(res.Area),
		Date:      res.Date,
		Submitted: res.Submitted,
	}
	if res.Day != nil {
		resp.Records = res.Day.Records
		createdAt := res.Day.CreatedAt
		resp.CreatedAt = &createdAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	Area string `json:"area"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Days int    `json:"days"`
	report.Report
}

// handleGetReport handles GET /api/v1/report?area=&from=&to=
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.Report == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Report handler not configured")
		return
	}

	q := r.URL.Query()
	res, err := s.deps.Report.Handle(r.Context(), query.GetReportQuery{
		Identity: id,
		Area:     q.Get("area"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Area:   string(res.Area),
		From:   res.From,
		To:     res.To,
		Days:   res.Days,
		Report: res.Report,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type studentResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Area          string    `json:"area"`
	Age           *int      `json:"age,omitempty"`
	AdmissionDate string    `json:"admissionDate,omitempty"`
	DateOfBirth   string    `json:"dateOfBirth,omitempty"`
	FatherName    string    `json:"fatherName,omitempty"`
	MotherName    string    `json:"motherName,omitempty"`
	Contact       string    `json:"contact,omitempty"`
	Address       string    `json:"address,omitempty"`
	Aadhaar       string    `json:"aadhaar,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toStudentResponse(st *student.Student) studentResponse {
	return studentResponse{
		ID:            st.ID,
		Name:          st.Name,
		Area:          string(st.Area),
		Age:           st.Age,
		AdmissionDate: formatOptionalDate(st.AdmissionDate),
		DateOfBirth:   formatOptionalDate(st.DateOfBirth),
		FatherName:    st.FatherName,
		MotherName:    st.MotherName,
		Contact:       st.Contact,
		Address:       st.Address,
		Aadhaar:       st.Aadhaar,
		CreatedAt:     st.CreatedAt,
	}
}

// handleListStudents handles GET /api/v1/students?area=
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.ListStudents == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Roster handler not configured")
		return
	}

	res, err := s.deps.ListStudents.Handle(r.Context(), query.ListStudentsQuery{
		Identity: id,
		Area:     r.URL.Query().Get("area"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	students := make([]studentResponse, len(res.Students))
	for i, st := range res.Students {
		students[i] = toStudentResponse(st)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"area":     string(res.Area),
		"students": students,
	})
}

type registerStudentRequest struct {
	Area          string `json:"area"`
	Name          string `json:"name"`
	Age           *int   `json:"age"`
	AdmissionDate string `json:"admissionDate"`
	DateOfBirth   string `json:"dateOfBirth"`
	FatherName    string `json:"fatherName"`
	MotherName    string `json:"motherName"`
	Contact       string `json:"contact"`
	Address       string `json:"address"`
	Aadhaar       string `json:"aadhaar"`
}

// handleRegisterStudent handles POST /api/v1/students
func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.RegisterStudent == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req registerStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.deps.RegisterStudent.Handle(r.Context(), command.RegisterStudentCommand{
		Identity:      id,
		Area:          req.Area,
		Name:          req.Name,
		Age:           req.Age,
		AdmissionDate: req.AdmissionDate,
		DateOfBirth:   req.DateOfBirth,
		FatherName:    req.FatherName,
		MotherName:    req.MotherName,
		Contact:       req.Contact,
		Address:       req.Address,
		Aadhaar:       req.Aadhaar,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   res.ID,
		"area": string(res.Area),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER DIRECTORY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type teacherResponse struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	JoinDate    string    `json:"joinDate,omitempty"`
	Area        string    `json:"area"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toTeacherResponse(t *teacher.Teacher) teacherResponse {
	return teacherResponse{
		UID:         t.UID,
		DisplayName: t.DisplayName,
		Email:       t.Email,
		Phone:       t.Phone,
		Gender:      t.Gender,
		JoinDate:    formatOptionalDate(t.JoinDate),
		Area:        string(t.Area),
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
	}
}

// handleListTeachers handles GET /api/v1/teachers?area=
func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.ListTeachers == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Directory handler not configured")
		return
	}

	list, err := s.deps.ListTeachers.Handle(r.Context(), query.ListTeachersQuery{
		Identity: id,
		Area:     r.URL.Query().Get("area"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	teachers := make([]teacherResponse, len(list))
	for i, t := range list {
		teachers[i] = toTeacherResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"teachers": teachers})
}

type registerTeacherRequest struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender"`
	JoinDate    string `json:"joinDate"`
	Area        string `json:"area"`
}

// handleRegisterTeacher handles POST /api/v1/teachers
func (s *Server) handleRegisterTeacher(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.TeacherDirectory == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Directory handler not configured")
		return
	}

	var req registerTeacherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.deps.TeacherDirectory.Register(r.Context(), command.RegisterTeacherCommand{
		Identity:    id,
		UID:         req.UID,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Gender:      req.Gender,
		JoinDate:    req.JoinDate,
		Area:        req.Area,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"teacher": toTeacherResponse(res.Teacher)})
}

// handleRemoveTeacher handles DELETE /api/v1/teachers/{uid}
func (s *Server) handleRemoveTeacher(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.TeacherDirectory == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Directory handler not configured")
		return
	}

	res, err := s.deps.TeacherDirectory.Remove(r.Context(), command.RemoveTeacherCommand{
		Identity: id,
		UID:      r.PathValue("uid"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uid":                res.UID,
		"credentialsRevoked": res.CredentialsRevoked,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLER
// ══════════════════════════════════════════════════════════════════════════════

type areaSummaryResponse struct {
	Area           string `json:"area"`
	Students       int    `json:"students"`
	Teachers       int    `json:"teachers"`
	SubmittedToday bool   `json:"submittedToday"`
}

// handleGetDashboard handles GET /api/v1/dashboard
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if s.deps.Dashboard == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Dashboard handler not configured")
		return
	}

	res, err := s.deps.Dashboard.Handle(r.Context(), query.GetDashboardQuery{Identity: id})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	areas := make([]areaSummaryResponse, len(res.Areas))
	for i, a := range res.Areas {
		areas[i] = areaSummaryResponse{
			Area:           string(a.Area),
			Students:       a.Students,
			Teachers:       a.Teachers,
			SubmittedToday: a.SubmittedToday,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":  res.Date,
		"areas": areas,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timeutil.FormatDate(*t)
}
