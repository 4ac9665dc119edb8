package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanManage(t *testing.T) {
	ws := "ws-1"
	other := "ws-2"

	owner := User{Role: UserRoleBusinessOwner, WorkspaceID: &ws}
	require.True(t, owner.CanManage(ws))
	require.False(t, owner.CanManage(other))

	staff := User{Role: UserRoleStaff, WorkspaceID: &ws}
	require.True(t, staff.CanManage(ws))

	client := User{Role: UserRoleUser, WorkspaceID: &ws}
	require.False(t, client.CanManage(ws))

	admin := User{Role: UserRoleSuperAdmin}
	require.True(t, admin.CanManage(ws))
	require.True(t, admin.CanManage(other))
}

func TestMemberOf(t *testing.T) {
	ws := "ws-1"

	member := User{Role: UserRoleUser, WorkspaceID: &ws}
	require.True(t, member.MemberOf(ws))
	require.False(t, member.MemberOf("ws-2"))

	detached := User{Role: UserRoleBusinessOwner}
	require.False(t, detached.MemberOf(ws))

	admin := User{Role: UserRoleSuperAdmin}
	require.True(t, admin.MemberOf(ws))
}
