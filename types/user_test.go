package types

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestUserCreateDefaultsActive(t *testing.T) {
	in := UserCreate{Username: "newuser", Email: "new@example.com", FirstName: "New", LastName: "User", Role: RoleUser}

	if !in.User().Active {
		t.Fatalf("expected active to default to true")
	}

	in.Active = boolPtr(false)
	if in.User().Active {
		t.Fatalf("expected explicit active=false to be kept")
	}
}

func TestUserPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := User{
		ID:        7,
		Username:  "testuser",
		Email:     "test@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      RoleUser,
		Active:    true,
		CreatedAt: created,
	}

	tests := []struct {
		name  string
		patch UserPatch
		want  User
	}{
		{
			name:  "empty patch",
			patch: UserPatch{},
			want:  stored,
		},
		{
			name:  "names only",
			patch: UserPatch{FirstName: strPtr("Updated"), LastName: strPtr("Name")},
			want: func() User {
				u := stored
				u.FirstName = "Updated"
				u.LastName = "Name"
				return u
			}(),
		},
		{
			name: "every field",
			patch: UserPatch{
				Username:  strPtr("other"),
				Email:     strPtr("other@example.com"),
				FirstName: strPtr("O"),
				LastName:  strPtr("T"),
				Role:      strPtr(RoleGuest),
				Active:    boolPtr(false),
			},
			want: User{
				ID:        7,
				Username:  "other",
				Email:     "other@example.com",
				FirstName: "O",
				LastName:  "T",
				Role:      RoleGuest,
				Active:    false,
				CreatedAt: created,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Apply(stored)
			if got.ID != tt.want.ID ||
				got.Username != tt.want.Username ||
				got.Email != tt.want.Email ||
				got.FirstName != tt.want.FirstName ||
				got.LastName != tt.want.LastName ||
				got.Role != tt.want.Role ||
				got.Active != tt.want.Active ||
				!got.CreatedAt.Equal(tt.want.CreatedAt) ||
				got.UpdatedAt != nil {
				t.Fatalf("unexpected merge result:\n got %+v\nwant %+v", got, tt.want)
			}
		})
	}

	if stored.FirstName != "Test" {
		t.Fatalf("Apply must not mutate the stored record")
	}
}
