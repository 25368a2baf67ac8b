package screener

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/model"
)

type fakeScreenerRepo struct {
	forms map[uuid.UUID]*model.ScreenerForm
}

func newFakeScreenerRepo() *fakeScreenerRepo {
	return &fakeScreenerRepo{forms: make(map[uuid.UUID]*model.ScreenerForm)}
}

func (f *fakeScreenerRepo) Create(ctx context.Context, form *model.ScreenerForm) error {
	f.forms[form.ID] = form
	return nil
}

func (f *fakeScreenerRepo) Get(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error) {
	form, ok := f.forms[id]
	if !ok {
		return nil, assert.AnError
	}
	return form, nil
}

func (f *fakeScreenerRepo) Update(ctx context.Context, form *model.ScreenerForm) error {
	if _, ok := f.forms[form.ID]; !ok {
		return assert.AnError
	}
	f.forms[form.ID] = form
	return nil
}

func (f *fakeScreenerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.forms, id)
	return nil
}

func (f *fakeScreenerRepo) List(ctx context.Context) ([]*model.ScreenerForm, error) {
	var out []*model.ScreenerForm
	for _, form := range f.forms {
		out = append(out, form)
	}
	return out, nil
}

type fakeGenerator struct {
	fields []model.ScreenerField
	err    error
}

func (f *fakeGenerator) GenerateFields(ctx context.Context, protocolText string) ([]model.ScreenerField, error) {
	return f.fields, f.err
}

func actor() *model.TokenClaims {
	return &model.TokenClaims{UserID: uuid.New(), Role: model.UserRoleAdmin}
}

func TestGenerateFieldsPrependsContactFields(t *testing.T) {
	gen := &fakeGenerator{fields: []model.ScreenerField{
		{Name: "age", Label: "What is your age?", Type: model.FieldTypeNumber, Required: true},
		{Name: "email", Label: "Duplicate Email", Type: model.FieldTypeText},
	}}
	svc := NewService(newFakeScreenerRepo(), gen)

	fields, err := svc.GenerateFields(context.Background(), "Phase II diabetes study, adults 18-65")
	require.NoError(t, err)

	// Four contact fields, then AI fields minus the contact duplicate.
	require.Len(t, fields, 5)
	assert.Equal(t, "name", fields[0].Name)
	assert.Equal(t, "email", fields[1].Name)
	assert.Equal(t, "phone", fields[2].Name)
	assert.Equal(t, "zip", fields[3].Name)
	assert.Equal(t, "age", fields[4].Name)
}

func TestGenerateFieldsRequiresProtocolText(t *testing.T) {
	svc := NewService(newFakeScreenerRepo(), &fakeGenerator{})

	_, err := svc.GenerateFields(context.Background(), "")
	assert.Error(t, err)
}

func TestPublishLifecycle(t *testing.T) {
	repo := newFakeScreenerRepo()
	svc := NewService(repo, &fakeGenerator{})

	form, err := svc.CreateForm(context.Background(), actor(), &model.CreateScreenerRequest{
		Name: "Diabetes Screener",
		Fields: []model.ScreenerField{
			{Name: "age", Label: "Age", Type: model.FieldTypeNumber, Required: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScreenerStatusDraft, form.Status)
	assert.Equal(t, 1, form.Version)

	published, err := svc.PublishForm(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScreenerStatusPublished, published.Status)

	// Published forms are frozen.
	name := "Renamed"
	_, err = svc.UpdateForm(context.Background(), form.ID, &model.UpdateScreenerRequest{Name: &name})
	assert.Error(t, err)

	// Publishing again is a no-op.
	again, err := svc.PublishForm(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScreenerStatusPublished, again.Status)
}

func TestPublishEmptyFormFails(t *testing.T) {
	svc := NewService(newFakeScreenerRepo(), &fakeGenerator{})

	form, err := svc.CreateForm(context.Background(), actor(), &model.CreateScreenerRequest{Name: "Empty"})
	require.NoError(t, err)

	_, err = svc.PublishForm(context.Background(), form.ID)
	assert.Error(t, err)
}

func TestDuplicateBumpsVersionAndResetsStatus(t *testing.T) {
	svc := NewService(newFakeScreenerRepo(), &fakeGenerator{})
	creator := actor()

	form, err := svc.CreateForm(context.Background(), creator, &model.CreateScreenerRequest{
		Name: "Diabetes Screener",
		Fields: []model.ScreenerField{
			{Name: "age", Label: "Age", Type: model.FieldTypeNumber, Required: true},
		},
	})
	require.NoError(t, err)

	_, err = svc.PublishForm(context.Background(), form.ID)
	require.NoError(t, err)

	dup, err := svc.DuplicateForm(context.Background(), creator, form.ID)
	require.NoError(t, err)

	assert.NotEqual(t, form.ID, dup.ID)
	assert.Equal(t, form.Name, dup.Name)
	assert.Equal(t, 2, dup.Version)
	assert.Equal(t, model.ScreenerStatusDraft, dup.Status)
	assert.Len(t, dup.Fields, 1)
}
