package leaverequest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"leaveflow/internal/audit"
	"leaveflow/internal/leaverequest"
	leaverequesterrors "leaveflow/internal/leaverequest/errors"
	"leaveflow/internal/shared/contextutil"
	"leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	submitFn             func(ctx context.Context, actor contextutil.Actor, req leaverequest.SubmitLeaveRequest) (leaverequest.LeaveRequestResponse, error)
	cspReviewFn          func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.CSPReviewRequest) (leaverequest.LeaveRequestResponse, error)
	markClientResponseFn func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.ClientResponseRequest) (leaverequest.LeaveRequestResponse, error)
	sendToPayrollFn      func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.SendToPayrollRequest) (leaverequest.LeaveRequestResponse, error)
	payrollAckFn         func(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error)
	getByIDFn            func(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error)
	getAllFn             func(ctx context.Context, status string) ([]leaverequest.LeaveRequestResponse, error)
	getHistoryFn         func(ctx context.Context, id string) ([]audit.AuditEntryResponse, error)
}

func (f *fakeService) Submit(ctx context.Context, actor contextutil.Actor, req leaverequest.SubmitLeaveRequest) (leaverequest.LeaveRequestResponse, error) {
	return f.submitFn(ctx, actor, req)
}

func (f *fakeService) CSPReview(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.CSPReviewRequest) (leaverequest.LeaveRequestResponse, error) {
	return f.cspReviewFn(ctx, actor, id, req)
}

func (f *fakeService) MarkClientResponse(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.ClientResponseRequest) (leaverequest.LeaveRequestResponse, error) {
	return f.markClientResponseFn(ctx, actor, id, req)
}

func (f *fakeService) SendToPayroll(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.SendToPayrollRequest) (leaverequest.LeaveRequestResponse, error) {
	return f.sendToPayrollFn(ctx, actor, id, req)
}

func (f *fakeService) PayrollAck(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.payrollAckFn(ctx, id)
}

func (f *fakeService) GetByID(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeService) GetAll(ctx context.Context, status string) ([]leaverequest.LeaveRequestResponse, error) {
	return f.getAllFn(ctx, status)
}

func (f *fakeService) GetHistory(ctx context.Context, id string) ([]audit.AuditEntryResponse, error) {
	return f.getHistoryFn(ctx, id)
}

func setupRouter(svc leaverequest.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := contextutil.WithActor(c.Request.Context(), contextutil.Actor{
			Name:  "CSP One",
			Email: "csp@zimworx.com",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	h := leaverequest.NewHandler(svc)
	requests := r.Group("/api/v1/requests")
	{
		requests.GET("", h.GetAll)
		requests.GET("/:id", h.GetById)
		requests.GET("/:id/history", h.GetHistory)
		requests.POST("", h.Submit)
		requests.POST("/:id/review", h.CSPReview)
		requests.POST("/:id/client-response", h.MarkClientResponse)
		requests.POST("/:id/send-to-payroll", h.SendToPayroll)
		requests.POST("/:id/payroll-ack", h.PayrollAck)
	}
	return r
}

type envelope struct {
	Ok    bool                     `json:"ok"`
	Data  json.RawMessage          `json:"data"`
	Meta  *response.PaginationMeta `json:"meta"`
	Error map[string]any           `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHandler_Submit(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeService{
			submitFn: func(ctx context.Context, actor contextutil.Actor, req leaverequest.SubmitLeaveRequest) (leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, "csp@zimworx.com", actor.Email)
				return leaverequest.LeaveRequestResponse{
					ID:     uuid.NewString(),
					Status: string(leaverequest.StatusCSPReview),
					Days:   5,
				}, nil
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, "/api/v1/requests", gin.H{
			"team_member_name":  "Jane Doe",
			"team_member_email": "jane.doe@zimworx.com",
			"leave_type":        "annual",
			"start_date":        "2025-06-02",
			"end_date":          "2025-06-06",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Ok)

		var data leaverequest.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, string(leaverequest.StatusCSPReview), data.Status)
		assert.Equal(t, 5, data.Days)
	})

	t.Run("missing fields fail binding", func(t *testing.T) {
		svc := &fakeService{
			submitFn: func(ctx context.Context, actor contextutil.Actor, req leaverequest.SubmitLeaveRequest) (leaverequest.LeaveRequestResponse, error) {
				t.Fatal("service must not be called on binding failure")
				return leaverequest.LeaveRequestResponse{}, nil
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, "/api/v1/requests", gin.H{
			"team_member_name": "Jane Doe",
			"leave_type":       "annual",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error["code"])

		// One detail entry per missing field: email, start and end date.
		details, ok := env.Error["details"].([]any)
		assert.True(t, ok)
		assert.Len(t, details, 3)
		for _, d := range details {
			problem, ok := d.(map[string]any)
			assert.True(t, ok)
			assert.NotEmpty(t, problem["field"])
			assert.Equal(t, "is required", problem["problem"])
		}
	})

	t.Run("service error maps to envelope", func(t *testing.T) {
		svc := &fakeService{
			submitFn: func(ctx context.Context, actor contextutil.Actor, req leaverequest.SubmitLeaveRequest) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateRange
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, "/api/v1/requests", gin.H{
			"team_member_name":  "Jane Doe",
			"team_member_email": "jane.doe@zimworx.com",
			"leave_type":        "annual",
			"start_date":        "2025-06-06",
			"end_date":          "2025-06-02",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error["code"])
	})
}

func TestHandler_GetAll(t *testing.T) {
	items := make([]leaverequest.LeaveRequestResponse, 25)
	for i := range items {
		items[i] = leaverequest.LeaveRequestResponse{
			ID:     uuid.NewString(),
			Status: string(leaverequest.StatusCSPReview),
		}
	}
	svc := &fakeService{
		getAllFn: func(ctx context.Context, status string) ([]leaverequest.LeaveRequestResponse, error) {
			assert.Equal(t, "csp-review", status)
			return items, nil
		},
	}
	r := setupRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/requests?status=csp-review&page=2&page_size=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Ok)

	var data []leaverequest.LeaveRequestResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data, 10)
	assert.NotNil(t, env.Meta)
	assert.Equal(t, int64(25), env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
	assert.Equal(t, 2, env.Meta.Page)
}

func TestHandler_GetById(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := &fakeService{
			getByIDFn: func(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodGet, "/api/v1/requests/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", env.Error["code"])
	})

	t.Run("found", func(t *testing.T) {
		id := uuid.NewString()
		svc := &fakeService{
			getByIDFn: func(ctx context.Context, gotID string) (leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, id, gotID)
				return leaverequest.LeaveRequestResponse{ID: id, Status: string(leaverequest.StatusApproved)}, nil
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodGet, "/api/v1/requests/"+id, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Ok)
	})
}

func TestHandler_GetHistory(t *testing.T) {
	svc := &fakeService{
		getHistoryFn: func(ctx context.Context, id string) ([]audit.AuditEntryResponse, error) {
			return []audit.AuditEntryResponse{
				{Action: "submitted", Actor: "jane.doe@zimworx.com"},
				{Action: "csp-approved", Actor: "csp@zimworx.com"},
			}, nil
		},
	}
	r := setupRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/requests/%s/history", uuid.NewString()), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data []audit.AuditEntryResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data, 2)
	assert.Equal(t, "submitted", data[0].Action)
}

func TestHandler_CSPReview(t *testing.T) {
	t.Run("missing version fails binding", func(t *testing.T) {
		svc := &fakeService{
			cspReviewFn: func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.CSPReviewRequest) (leaverequest.LeaveRequestResponse, error) {
				t.Fatal("service must not be called on binding failure")
				return leaverequest.LeaveRequestResponse{}, nil
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/review", uuid.NewString()), gin.H{
			"approved": true,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error["code"])
	})

	t.Run("unauthorized actor", func(t *testing.T) {
		svc := &fakeService{
			cspReviewFn: func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.CSPReviewRequest) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrNotAuthorized
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/review", uuid.NewString()), gin.H{
			"approved": true,
			"version":  1,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", env.Error["code"])
	})

	t.Run("approved", func(t *testing.T) {
		svc := &fakeService{
			cspReviewFn: func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.CSPReviewRequest) (leaverequest.LeaveRequestResponse, error) {
				assert.NotNil(t, req.Approved)
				assert.True(t, *req.Approved)
				return leaverequest.LeaveRequestResponse{
					ID:      id,
					Status:  string(leaverequest.StatusPendingClientApproval),
					Version: 2,
				}, nil
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/review", uuid.NewString()), gin.H{
			"approved": true,
			"version":  1,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Ok)
	})
}

func TestHandler_SendToPayroll(t *testing.T) {
	t.Run("conflict on stale version", func(t *testing.T) {
		svc := &fakeService{
			sendToPayrollFn: func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.SendToPayrollRequest) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrConcurrentModification
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/send-to-payroll", uuid.NewString()), gin.H{
			"version": 1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", env.Error["code"])
	})

	t.Run("invalid state", func(t *testing.T) {
		svc := &fakeService{
			sendToPayrollFn: func(ctx context.Context, actor contextutil.Actor, id string, req leaverequest.SendToPayrollRequest) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrInvalidTransition
			},
		}
		r := setupRouter(svc)

		w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/send-to-payroll", uuid.NewString()), gin.H{
			"version": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATE", env.Error["code"])
	})
}

func TestHandler_PayrollAck(t *testing.T) {
	svc := &fakeService{
		payrollAckFn: func(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error) {
			return leaverequest.LeaveRequestResponse{ID: id, Status: string(leaverequest.StatusApproved)}, nil
		},
	}
	r := setupRouter(svc)

	w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/payroll-ack", uuid.NewString()), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Ok)

	var data leaverequest.LeaveRequestResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, string(leaverequest.StatusApproved), data.Status)
}
