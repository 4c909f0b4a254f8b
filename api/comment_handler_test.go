package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/store"
)

func commentFixture(t *testing.T) (*CommentHandler, *memDirectory, *auth.Principal, *store.Project) {
	t.Helper()
	dir := newMemDirectory()
	owner := dir.addUser(auth.RoleMember)
	project := &store.Project{
		ID:      "proj-1",
		Name:    "Website",
		OwnerID: owner.ID,
		Members: []string{owner.ID},
	}
	dir.projects[project.ID] = project
	h := NewCommentHandler(commentStore{dir}, projectStore{dir}, nil)
	return h, dir, owner, project
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return data
}

func TestCommentHandler_CreateAndList(t *testing.T) {
	h, _, owner, project := commentFixture(t)
	ctx := context.Background()

	res := h.dispatch(ctx, owner, wsEnvelope{
		Op:      opCreateComment,
		Payload: payload(t, createCommentPayload{ProjectID: project.ID, Body: "first!"}),
	})
	if res.Error != "" {
		t.Fatalf("createComment error = %q", res.Error)
	}
	created, ok := res.Data.(*store.Comment)
	if !ok {
		t.Fatalf("createComment data = %T, want *store.Comment", res.Data)
	}
	if created.AuthorID != owner.ID {
		t.Errorf("authorId = %v, want %v", created.AuthorID, owner.ID)
	}

	res = h.dispatch(ctx, owner, wsEnvelope{
		Op:      opListComments,
		Payload: payload(t, listCommentsPayload{ProjectID: project.ID}),
	})
	if res.Error != "" {
		t.Fatalf("findAllComments error = %q", res.Error)
	}
	comments, ok := res.Data.([]*store.Comment)
	if !ok || len(comments) != 1 {
		t.Errorf("findAllComments data = %v, want one comment", res.Data)
	}
}

func TestCommentHandler_NonMemberForbidden(t *testing.T) {
	h, dir, _, project := commentFixture(t)
	outsider := dir.addUser(auth.RoleMember)

	res := h.dispatch(context.Background(), outsider, wsEnvelope{
		Op:      opCreateComment,
		Payload: payload(t, createCommentPayload{ProjectID: project.ID, Body: "hi"}),
	})
	if res.Error != "Forbidden" {
		t.Errorf("createComment error = %q, want Forbidden", res.Error)
	}
}

func TestCommentHandler_AdminBypassesMembership(t *testing.T) {
	h, dir, _, project := commentFixture(t)
	admin := dir.addUser(auth.RoleAdmin)

	res := h.dispatch(context.Background(), admin, wsEnvelope{
		Op:      opListComments,
		Payload: payload(t, listCommentsPayload{ProjectID: project.ID}),
	})
	if res.Error != "" {
		t.Errorf("findAllComments error = %q, want none for an admin", res.Error)
	}
}

func TestCommentHandler_UpdateRequiresAuthor(t *testing.T) {
	h, dir, owner, project := commentFixture(t)
	other := dir.addUser(auth.RoleMember)
	dir.projects[project.ID].Members = append(dir.projects[project.ID].Members, other.ID)

	comment := &store.Comment{
		ID:        "comment-1",
		ProjectID: project.ID,
		AuthorID:  owner.ID,
		Body:      "original",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	dir.comments[comment.ID] = comment

	// A fellow member who is not the author cannot edit.
	res := h.dispatch(context.Background(), other, wsEnvelope{
		Op:      opUpdateComment,
		Payload: payload(t, updateCommentPayload{ID: comment.ID, Body: "hacked"}),
	})
	if res.Error != "Forbidden" {
		t.Errorf("non-author update error = %q, want Forbidden", res.Error)
	}

	// The author can.
	res = h.dispatch(context.Background(), owner, wsEnvelope{
		Op:      opUpdateComment,
		Payload: payload(t, updateCommentPayload{ID: comment.ID, Body: "edited"}),
	})
	if res.Error != "" {
		t.Fatalf("author update error = %q", res.Error)
	}
	updated := res.Data.(*store.Comment)
	if updated.Body != "edited" {
		t.Errorf("body = %q, want edited", updated.Body)
	}
}

func TestCommentHandler_RemoveMissing(t *testing.T) {
	h, _, owner, _ := commentFixture(t)

	res := h.dispatch(context.Background(), owner, wsEnvelope{
		Op:      opRemoveComment,
		Payload: payload(t, commentIDPayload{ID: "no-such"}),
	})
	if res.Error != "Not found" {
		t.Errorf("removeComment error = %q, want Not found", res.Error)
	}
}

func TestCommentHandler_BadEnvelopes(t *testing.T) {
	h, _, owner, _ := commentFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		env  wsEnvelope
	}{
		{name: "unknown op", env: wsEnvelope{Op: "nonsense"}},
		{name: "create without body", env: wsEnvelope{Op: opCreateComment, Payload: payload(t, createCommentPayload{ProjectID: "p"})}},
		{name: "list without project", env: wsEnvelope{Op: opListComments, Payload: payload(t, listCommentsPayload{})}},
		{name: "get without id", env: wsEnvelope{Op: opGetComment, Payload: payload(t, commentIDPayload{})}},
		{name: "payload not json", env: wsEnvelope{Op: opGetComment, Payload: json.RawMessage("{")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := h.dispatch(ctx, owner, tt.env); res.Error == "" {
				t.Error("dispatch() accepted a malformed envelope")
			}
		})
	}
}
