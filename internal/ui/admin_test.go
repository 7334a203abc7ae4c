package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/library"
)

func TestAdmin_TogglesSendOneField(t *testing.T) {
	api := &fakeAPI{users: []library.User{
		{ID: 1, Email: "admin@example.com", IsActive: true, IsSuperuser: true},
		{ID: 2, Email: "reader@example.com", IsActive: true},
	}}
	h := newHarness(t, api, signedIn(library.User{ID: 1, IsSuperuser: true}))
	h.navigate("/admin/users")
	require.Equal(t, routeAdminUsers, h.m.route.pattern)
	h.assertView("reader@example.com")

	h.key("j")
	h.key("a")
	require.Len(t, api.userUpdates, 1)
	require.NotNil(t, api.userUpdates[0].IsActive)
	assert.False(t, *api.userUpdates[0].IsActive)
	assert.Nil(t, api.userUpdates[0].IsSuperuser)
	assert.Equal(t, 1, api.count("PUT /users/2"))
	assert.Equal(t, 2, api.count("GET /users/"), "the list is refetched after an update")

	h.key("s")
	require.Len(t, api.userUpdates, 2)
	require.NotNil(t, api.userUpdates[1].IsSuperuser)
	assert.True(t, *api.userUpdates[1].IsSuperuser)
	assert.Nil(t, api.userUpdates[1].IsActive)
}

func TestAdmin_RendersFlags(t *testing.T) {
	api := &fakeAPI{users: []library.User{{ID: 2, Email: "reader@example.com", IsActive: true}}}
	h := newHarness(t, api, signedIn(library.User{ID: 1, IsSuperuser: true}))
	h.navigate("/admin/users")

	h.assertView("Active")
	h.assertView("[x]")
	h.assertView("[ ]")
}

func TestCheckbox(t *testing.T) {
	if checkbox(true) != "[x]" || checkbox(false) != "[ ]" {
		t.Fatalf("checkbox = %q/%q", checkbox(true), checkbox(false))
	}
}
