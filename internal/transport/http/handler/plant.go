package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"plantid/internal/ai"
	"plantid/internal/app"
	"plantid/internal/imaging"
	"plantid/internal/transport/http/middleware"
	"plantid/internal/transport/http/response"
)

// multipart framing allowance on top of the image limit
const uploadSlack = 64 << 10

type PlantHandler struct {
	plantService *app.PlantService
}

// analyzeMessages holds the task-specific wording of the analyze errors.
type analyzeMessages struct {
	malformed string
	shape     string
	failed    string
}

var (
	identifyMessages = analyzeMessages{
		malformed: "Failed to process plant identification response",
		shape:     "Invalid plant identification response format",
		failed:    "Failed to identify plant. Please try again with a clearer image.",
	}
	diagnoseMessages = analyzeMessages{
		malformed: "Failed to process plant diagnosis response",
		shape:     "Invalid plant diagnosis response format",
		failed:    "Failed to diagnose plant health. Please try again with a clearer image.",
	}
)

func NewPlantHandler(plantService *app.PlantService) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

func (h *PlantHandler) Identify(c *gin.Context) {
	input, ok := readUpload(c)
	if !ok {
		return
	}

	ident, err := h.plantService.Identify(c.Request.Context(), input)
	if err != nil {
		analyzeError(c, err, identifyMessages)
		return
	}
	response.JSON(c, gin.H{"success": true, "identification": ident})
}

func (h *PlantHandler) Diagnose(c *gin.Context) {
	input, ok := readUpload(c)
	if !ok {
		return
	}

	diagnosis, err := h.plantService.Diagnose(c.Request.Context(), input)
	if err != nil {
		analyzeError(c, err, diagnoseMessages)
		return
	}
	response.JSON(c, gin.H{"success": true, "diagnosis": diagnosis})
}

func (h *PlantHandler) ListIdentifications(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	items, err := h.plantService.ListIdentifications(c.Request.Context(), sess.UserID)
	if err != nil {
		internalError(c, err, "Failed to fetch identifications")
		return
	}
	response.JSON(c, items)
}

func (h *PlantHandler) GetIdentification(c *gin.Context) {
	id, ok := parseID(c, "Invalid identification ID")
	if !ok {
		return
	}

	ident, err := h.plantService.GetIdentification(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrIdentificationNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Plant identification not found")
			return
		}
		internalError(c, err, "Failed to fetch identification")
		return
	}
	response.JSON(c, ident)
}

func (h *PlantHandler) ListDiagnoses(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	items, err := h.plantService.ListDiagnoses(c.Request.Context(), sess.UserID)
	if err != nil {
		internalError(c, err, "Failed to fetch diagnoses")
		return
	}
	response.JSON(c, items)
}

func (h *PlantHandler) GetDiagnosis(c *gin.Context) {
	id, ok := parseID(c, "Invalid diagnosis ID")
	if !ok {
		return
	}

	diagnosis, err := h.plantService.GetDiagnosis(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrDiagnosisNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Plant diagnosis not found")
			return
		}
		internalError(c, err, "Failed to fetch diagnosis")
		return
	}
	response.JSON(c, diagnosis)
}

// readUpload pulls the "image" part out of a multipart request. Oversized
// bodies are refused before anything is buffered past the limit.
func readUpload(c *gin.Context) (app.AnalyzeInput, bool) {
	var input app.AnalyzeInput

	// an unresolvable session must not turn into an ownerless record
	if middleware.SessionUnavailable(c) {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "Session store error")
		return input, false
	}

	if c.Request.ContentLength > imaging.MaxUploadBytes+uploadSlack {
		tooLarge(c)
		return input, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imaging.MaxUploadBytes+uploadSlack)

	fh, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			tooLarge(c)
			return input, false
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "No image file provided")
		return input, false
	}
	if fh.Size > imaging.MaxUploadBytes {
		tooLarge(c)
		return input, false
	}

	mimeType := fh.Header.Get("Content-Type")
	if !imaging.IsImageType(mimeType) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Only image files are allowed")
		return input, false
	}

	data, err := readFileHeader(fh)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Could not read uploaded image")
		return input, false
	}

	input.Image = data
	input.MIMEType = mimeType
	if sess, ok := middleware.SessionFrom(c); ok {
		userID := sess.UserID
		input.UserID = &userID
	}
	return input, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
}

func analyzeError(c *gin.Context, err error, msgs analyzeMessages) {
	switch {
	case errors.Is(err, imaging.ErrPayloadTooLarge):
		tooLarge(c)
	case errors.Is(err, imaging.ErrImageTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "Image dimensions are too large")
	case errors.Is(err, imaging.ErrUnsupportedMediaType):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Only image files are allowed")
	case errors.Is(err, imaging.ErrUndecodableImage):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "The uploaded file is not a readable image")
	case errors.Is(err, ai.ErrUpstreamAuth):
		response.Error(c, http.StatusUnauthorized, response.CodeUpstreamAuth,
			"API key is missing or invalid. Please check your Gemini API configuration.")
	case errors.Is(err, ai.ErrUpstreamRateLimited):
		response.Error(c, http.StatusTooManyRequests, response.CodeTooManyRequests, "API quota exceeded. Please try again later.")
	case errors.Is(err, ai.ErrMalformedResponse):
		serverError(c, http.StatusInternalServerError, response.CodeUpstreamShape, err, msgs.malformed)
	case errors.Is(err, ai.ErrInvalidResultShape):
		serverError(c, http.StatusInternalServerError, response.CodeUpstreamShape, err, msgs.shape)
	default:
		internalError(c, err, msgs.failed)
	}
}

func tooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "Image exceeds the 10MB upload limit")
}

func parseID(c *gin.Context, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, message)
		return 0, false
	}
	return uint(id), true
}
