package members

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca-backend/internal/platform/apierr"
)

type fakeStore struct {
	nextID int64
	rows   []MemberResponse
}

func (f *fakeStore) Insert(_ context.Context, in CreateMemberRequest) (int64, error) {
	f.nextID++
	f.rows = append(f.rows, MemberResponse{
		MemberID:     f.nextID,
		Name:         in.Name,
		MemberNumber: in.MemberNumber,
		Phone:        in.Phone,
	})
	return f.nextID, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*MemberResponse, error) {
	for i := range f.rows {
		if f.rows[i].MemberID == id {
			return &f.rows[i], nil
		}
	}
	return nil, apierr.ErrNotFound("member not found")
}

func (f *fakeStore) List(_ context.Context) ([]MemberResponse, error) {
	return f.rows, nil
}

func Test_RegisterMember_PhoneIsOptional(t *testing.T) {
	svc := &Service{store: &fakeStore{}}

	res, err := svc.RegisterMember(context.Background(), CreateMemberRequest{Name: "Ana", MemberNumber: "S-001"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MemberID)
	assert.Nil(t, res.Phone)

	phone := "555-0101"
	res, err = svc.RegisterMember(context.Background(), CreateMemberRequest{Name: "Luis", MemberNumber: "S-002", Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, res.Phone)
	assert.Equal(t, "555-0101", *res.Phone)
}

func Test_RegisterMember_RequiresNameAndNumber(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{store: store}

	for _, req := range []CreateMemberRequest{
		{Name: "", MemberNumber: "S-001"},
		{Name: "Ana", MemberNumber: " "},
	} {
		_, err := svc.RegisterMember(context.Background(), req)
		var api *apierr.APIError
		require.True(t, errors.As(err, &api))
		assert.Equal(t, apierr.CodeInvalidArgument, api.Code)
	}
	assert.Empty(t, store.rows)
}

func Test_ListMembers_ReturnsAllInOrder(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{store: store}
	for _, name := range []string{"Ana", "Luis"} {
		_, err := svc.RegisterMember(context.Background(), CreateMemberRequest{Name: name, MemberNumber: "S-" + name})
		require.NoError(t, err)
	}

	out, err := svc.ListMembers(context.Background())

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Ana", out[0].Name)
	assert.Equal(t, "Luis", out[1].Name)
}
