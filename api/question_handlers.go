package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxQuestionLength bounds the question text in bytes.
const maxQuestionLength = 1000

// QuestionRequest defines the structure of a question.
type QuestionRequest struct {
	Question string `json:"question"`
}

// AskHandler answers a question. Definition and direction questions are
// answered from the ontology, everything else from the indexed sentences.
func (api *API) AskHandler(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			SendEngineError(c, "answering question", err)
			return
		}
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateQuestion(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	answer, err := api.engine.Ask(c.Request.Context(), req.Question)
	if err != nil {
		SendEngineError(c, "answering question", err)
		return
	}

	c.JSON(http.StatusOK, answer)
}
