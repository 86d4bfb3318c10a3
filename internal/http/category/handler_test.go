package category_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/category"
	categoryHTTP "github.com/MrJamesThe3rd/finsight/internal/http/category"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond/respondtest"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

func newServer(t *testing.T, userID uuid.UUID) (http.Handler, *category.MockRepository) {
	t.Helper()

	repo := category.NewMockRepository(gomock.NewController(t))

	return respondtest.Router("/categories", userID, categoryHTTP.NewHandler(category.NewService(repo)).Routes), repo
}

func TestHandler_List(t *testing.T) {
	userID := uuid.New()

	t.Run("defaults and own", func(t *testing.T) {
		h, repo := newServer(t, userID)

		repo.EXPECT().ListCategories(gomock.Any(), userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, typ *transaction.Type) ([]*category.Category, error) {
				require.NotNil(t, typ)
				assert.Equal(t, transaction.TypeExpense, *typ)

				return []*category.Category{
					{ID: uuid.New(), Name: "Groceries", Type: transaction.TypeExpense, Owner: category.DefaultOwner{}},
					{ID: uuid.New(), Name: "Climbing", Type: transaction.TypeExpense, Owner: category.UserOwner{UserID: userID}},
				}, nil
			})

		rec := respondtest.Do(h, http.MethodGet, "/categories?type=Expense", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got []struct {
			Name      string `json:"name"`
			IsDefault bool   `json:"is_default"`
		}
		respondtest.Data(t, rec, &got)
		require.Len(t, got, 2)
		assert.True(t, got[0].IsDefault)
		assert.False(t, got[1].IsDefault)
	})

	t.Run("invalid type", func(t *testing.T) {
		h, _ := newServer(t, userID)

		rec := respondtest.Do(h, http.MethodGet, "/categories?type=transfer", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Modify(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	tests := []struct {
		name       string
		method     string
		body       string
		owner      category.Owner
		setupMock  func(repo *category.MockRepository)
		wantStatus int
	}{
		{
			name:   "rename own category",
			method: http.MethodPatch,
			body:   `{"name":"Bouldering"}`,
			owner:  category.UserOwner{UserID: userID},
			setupMock: func(repo *category.MockRepository) {
				repo.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						assert.Equal(t, "Bouldering", c.Name)
						return nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "default category is read-only",
			method:     http.MethodPatch,
			body:       `{"name":"Food"}`,
			owner:      category.DefaultOwner{},
			setupMock:  func(*category.MockRepository) {},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "other user's category",
			method:     http.MethodDelete,
			owner:      category.UserOwner{UserID: uuid.New()},
			setupMock:  func(*category.MockRepository) {},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "delete own category",
			method: http.MethodDelete,
			owner:  category.UserOwner{UserID: userID},
			setupMock: func(repo *category.MockRepository) {
				repo.EXPECT().DeleteCategory(gomock.Any(), id).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo := newServer(t, userID)

			repo.EXPECT().GetCategory(gomock.Any(), id).
				Return(&category.Category{ID: id, Name: "Climbing", Type: transaction.TypeExpense, Owner: tt.owner}, nil)
			tt.setupMock(repo)

			rec := respondtest.Do(h, tt.method, "/categories/"+id.String(), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Create_InvalidColor(t *testing.T) {
	h, _ := newServer(t, uuid.New())

	rec := respondtest.Do(h, http.MethodPost, "/categories", `{"name":"Pets","type":"expense","color":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
