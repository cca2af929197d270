package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"medicai/pkg"
)

// consultationRequest is the body of POST /patients/:identifier/consultation.
type consultationRequest struct {
	DoctorName string `json:"doctor_name"`
	Notes      string `json:"notes"`
}

// memoryUpdateRequest is the body of POST /patients/:identifier/memory.
type memoryUpdateRequest struct {
	MemoryType        string `json:"memory_type"`
	Content           string `json:"content"`
	AdditionalDetails string `json:"additional_details"`
}

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse wraps an agent reply.
type chatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "MedicAI API is running"})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "service": "medicai-api"})
}

func (s *Server) listRecentPatients(c echo.Context) error {
	return writeResult(c, s.tools.ListRecentPatients(c.Request().Context()))
}

func (s *Server) getPatientProfile(c echo.Context) error {
	identifier := c.Param("identifier")
	return writeResult(c, s.tools.GetPatientBrief(c.Request().Context(), identifier))
}

func (s *Server) addConsultation(c echo.Context) error {
	var req consultationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, pkg.Error("invalid request body"))
	}
	identifier := c.Param("identifier")
	res := s.tools.AddConsultationNotes(c.Request().Context(), identifier, req.DoctorName, req.Notes)
	return writeResult(c, res)
}

func (s *Server) updateMemory(c echo.Context) error {
	var req memoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, pkg.Error("invalid request body"))
	}
	identifier := c.Param("identifier")
	res := s.tools.UpdatePatientMemory(c.Request().Context(), identifier,
		req.MemoryType, req.Content, req.AdditionalDetails)
	return writeResult(c, res)
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, pkg.Error("invalid request body"))
	}
	return s.askAgent(c, req.Message)
}

func (s *Server) aiPatientBrief(c echo.Context) error {
	query := fmt.Sprintf("Generate a brief for patient %s", c.Param("identifier"))
	return s.askAgent(c, query)
}

func (s *Server) aiConsultationPrep(c echo.Context) error {
	query := fmt.Sprintf(
		"Prepare me for consultation with patient %s. Give me key points, alerts, and suggested questions.",
		c.Param("identifier"))
	return s.askAgent(c, query)
}

// askAgent runs one agent turn under the shared web doctor identity.
func (s *Server) askAgent(c echo.Context, query string) error {
	s.agent.InitSession(webDoctorID, webSessionID)
	reply, err := s.agent.Ask(c.Request().Context(), webDoctorID, webSessionID, query)
	if err != nil {
		s.log.Error().Err(err).Msg("agent query failed")
		return c.JSON(http.StatusInternalServerError, pkg.Error("AI chat error"))
	}
	return c.JSON(http.StatusOK, chatResponse{
		Response:  reply,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// writeResult writes the uniform tool Result.  The envelope's status field
// is the contract; transport-level failures (panics, bad JSON) are the only
// non-200 responses.
func writeResult(c echo.Context, res pkg.Result) error {
	return c.JSON(http.StatusOK, res)
}
