package category_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/category"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

var userID = uuid.MustParse("44444444-4444-4444-4444-444444444444")

func TestCategory_Capabilities(t *testing.T) {
	other := uuid.New()

	tests := []struct {
		name        string
		owner       category.Owner
		wantVisible bool
		wantModify  bool
		wantDefault bool
	}{
		{name: "Default", owner: category.DefaultOwner{}, wantVisible: true, wantDefault: true},
		{name: "Own", owner: category.UserOwner{UserID: userID}, wantVisible: true, wantModify: true},
		{name: "Foreign", owner: category.UserOwner{UserID: other}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &category.Category{Owner: tt.owner}

			assert.Equal(t, tt.wantVisible, c.VisibleTo(userID))
			assert.Equal(t, tt.wantModify, c.CanModify(userID))
			assert.Equal(t, tt.wantDefault, c.IsDefault())
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		existing  *category.Category
		setupMock func(m *category.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Own",
			existing: &category.Category{ID: id, Name: "Pets", Owner: category.UserOwner{UserID: userID}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:     "DefaultIsReadOnly",
			existing: &category.Category{ID: id, Name: "Food", Owner: category.DefaultOwner{}},
			wantErr:  apperr.ErrForbidden,
		},
		{
			name:     "Foreign",
			existing: &category.Category{ID: id, Name: "Pets", Owner: category.UserOwner{UserID: uuid.New()}},
			wantErr:  apperr.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			repo.EXPECT().GetCategory(gomock.Any(), id).Return(tt.existing, nil)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := category.NewService(repo).Update(context.Background(), userID, id, category.UpdateParams{
				Name: new("Animals"),
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Animals", got.Name)
		})
	}
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)

	got, err := category.NewService(repo).Create(context.Background(), category.CreateParams{
		UserID: userID,
		Name:   "  Pets ",
		Type:   transaction.TypeExpense,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pets", got.Name)
	assert.Equal(t, category.UserOwner{UserID: userID}, got.Owner)
}

func TestService_Create_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := category.NewService(category.NewMockRepository(ctrl))

	_, err := svc.Create(context.Background(), category.CreateParams{UserID: userID, Type: transaction.TypeExpense})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(context.Background(), category.CreateParams{UserID: userID, Name: "x", Type: "savings"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Get_Foreign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().GetCategory(gomock.Any(), id).Return(&category.Category{ID: id, Owner: category.UserOwner{UserID: uuid.New()}}, nil)

	_, err := category.NewService(repo).Get(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Delete_Default(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().GetCategory(gomock.Any(), id).Return(&category.Category{ID: id, Owner: category.DefaultOwner{}}, nil)

	err := category.NewService(repo).Delete(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
