package httpapi

import (
	"encoding/json"
	"time"

	"github.com/sufield/todoapi/internal/domain"
)

// bodyFields holds the members of a request object keyed exactly as sent.
// Requests bind only their own keys from it; any other member, including a
// differently cased spelling of a known key, is ignored.
type bodyFields map[string]json.RawMessage

type binding struct {
	key string
	dst any
}

func (f bodyFields) bind(bindings ...binding) error {
	for _, b := range bindings {
		raw, ok := f[b.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, b.dst); err != nil {
			return err
		}
	}
	return nil
}

// requestBody is implemented by every decoded request type.
type requestBody interface {
	bindFields(f bodyFields) error
}

type listRequest struct {
	Name string
}

func (r *listRequest) bindFields(f bodyFields) error {
	return f.bind(binding{"name", &r.Name})
}

type itemRequest struct {
	Text        string
	Description domain.Field[string]
	Tags        domain.Field[[]string]
	Status      domain.Field[domain.Status]
	DueDate     domain.Field[domain.Date]
	Priority    domain.Field[domain.Priority]
}

func (r *itemRequest) bindFields(f bodyFields) error {
	return f.bind(
		binding{"text", &r.Text},
		binding{"description", &r.Description},
		binding{"tags", &r.Tags},
		binding{"status", &r.Status},
		binding{"due_date", &r.DueDate},
		binding{"priority", &r.Priority},
	)
}

// newItem reads a create body. Absent and null both mean "use the default".
func (r itemRequest) newItem(listID int64, createdBy string) domain.NewItem {
	status, _ := r.Status.Get()
	tags, _ := r.Tags.Get()
	return domain.NewItem{
		ListID:      listID,
		Text:        r.Text,
		CreatedBy:   createdBy,
		Description: r.Description.Ptr(),
		Tags:        tags,
		Status:      status,
		DueDate:     r.DueDate.Ptr(),
		Priority:    r.Priority.Ptr(),
	}
}

func (r itemRequest) patch() domain.ItemPatch {
	return domain.ItemPatch{
		Text:        r.Text,
		Description: r.Description,
		Tags:        r.Tags,
		Status:      r.Status,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
	}
}

type dueDateRequest struct {
	DueDate domain.Field[domain.Date]
}

func (r *dueDateRequest) bindFields(f bodyFields) error {
	return f.bind(binding{"due_date", &r.DueDate})
}

type priorityRequest struct {
	Priority domain.Field[domain.Priority]
}

func (r *priorityRequest) bindFields(f bodyFields) error {
	return f.bind(binding{"priority", &r.Priority})
}

type listResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newListResponse(l domain.List) listResponse {
	return listResponse{
		ID:        l.ID,
		Name:      l.Name,
		OwnerID:   l.OwnerID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func newListResponses(ls []domain.List) []listResponse {
	out := make([]listResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, newListResponse(l))
	}
	return out
}

type itemResponse struct {
	ID          int64            `json:"id"`
	ListID      int64            `json:"list_id"`
	Text        string           `json:"text"`
	Description *string          `json:"description"`
	Tags        []string         `json:"tags"`
	Status      domain.Status    `json:"status"`
	DueDate     *domain.Date     `json:"due_date"`
	Priority    *domain.Priority `json:"priority"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   *time.Time       `json:"deleted_at"`
	CreatedBy   string           `json:"created_by"`
}

func newItemResponse(it domain.Item) itemResponse {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return itemResponse{
		ID:          it.ID,
		ListID:      it.ListID,
		Text:        it.Text,
		Description: it.Description,
		Tags:        tags,
		Status:      it.Status,
		DueDate:     it.DueDate,
		Priority:    it.Priority,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
		DeletedAt:   it.DeletedAt,
		CreatedBy:   it.CreatedBy,
	}
}

func newItemResponses(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, newItemResponse(it))
	}
	return out
}
