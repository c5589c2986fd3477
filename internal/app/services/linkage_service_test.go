package services

import (
	"context"
	"errors"
	"testing"

	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/cache"
)

func pendingLinkage(t *testing.T, h *harness) models.LinkedJob {
	t.Helper()
	if _, err := h.jobs.CreateJob(context.Background(), uidAcme, jobRequest("SDE", 10)); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	links, err := h.links.ListForCollege(context.Background(), uidTPO, "pending")
	if err != nil || len(links) != 1 {
		t.Fatalf("ListForCollege: %v %+v", err, links)
	}
	return links[0]
}

func TestSetStatusReversal(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	lj := pendingLinkage(t, h)

	resp, err := h.links.SetStatus(ctx, uidTPO, &dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "approved"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resp.Link.Status != models.LinkStatusApproved || resp.Job.ID != lj.Job.ID {
		t.Fatalf("unexpected response: %+v", resp)
	}

	resp, err = h.links.SetStatus(ctx, uidTPO, &dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "rejected"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resp.Link.Status != models.LinkStatusRejected {
		t.Fatalf("expected rejected, got %s", resp.Link.Status)
	}

	rejected, err := h.links.ListForCollege(ctx, uidTPO, "rejected")
	if err != nil || len(rejected) != 1 {
		t.Fatalf("rejected listing: %v %+v", err, rejected)
	}
	pending, err := h.links.ListForCollege(ctx, uidTPO, "pending")
	if err != nil || len(pending) != 0 {
		t.Fatalf("pending listing should be empty after eviction: %v %+v", err, pending)
	}
}

func TestSetStatusEvictsBothSides(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	lj := pendingLinkage(t, h)

	if _, err := h.links.SetStatus(ctx, uidTPO, &dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "approve"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	for _, key := range LinkageStatusInvalidation(1, 10) {
		if !h.store.evicted(key) {
			t.Errorf("expected %s to be evicted", key)
		}
	}
	if !h.store.evicted(cache.CollegeJobsKey(10, "approved")) {
		t.Error("approved student listing must be evicted")
	}
}

func TestSetStatusRejects(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	lj := pendingLinkage(t, h)

	tests := []struct {
		name   string
		uid    string
		req    dto.ManageLinkageRequest
		target error
	}{
		{"faculty", uidFaculty, dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "approve"}, apperrors.ErrPermissionDenied},
		{"other college", uidOtherTP, dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "approve"}, apperrors.ErrPermissionDenied},
		{"company", uidAcme, dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "approve"}, apperrors.ErrPermissionDenied},
		{"unknown action", uidTPO, dto.ManageLinkageRequest{LinkageID: lj.Link.ID, Action: "maybe"}, apperrors.ErrBadRequest},
		{"missing linkage", uidTPO, dto.ManageLinkageRequest{LinkageID: 9999, Action: "approve"}, apperrors.ErrResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.links.SetStatus(ctx, tt.uid, &tt.req); !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestLinkageListings(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	lj := pendingLinkage(t, h)

	if _, err := h.links.ListForCollege(ctx, uidTPO, "bogus"); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	all, err := h.links.ListForCollege(ctx, uidFaculty, "all")
	if err != nil || len(all) != 1 {
		t.Fatalf("faculty may read all linkages: %v %+v", err, all)
	}

	pending, err := h.links.ListForCompany(ctx, uidAcme, models.LinkStatusPending)
	if err != nil || len(pending) != 1 || pending[0].Link.ID != lj.Link.ID {
		t.Fatalf("company pending listing: %v %+v", err, pending)
	}
	other, err := h.links.ListForCompany(ctx, uidGlobex, models.LinkStatusPending)
	if err != nil || len(other) != 0 {
		t.Fatalf("other company should see nothing: %v %+v", err, other)
	}

	atCollege, err := h.links.ListCompanyJobsAtCollege(ctx, uidTPO, 1)
	if err != nil || len(atCollege) != 1 || atCollege[0].CompanyName != "Acme" {
		t.Fatalf("company jobs at college: %v %+v", err, atCollege)
	}
	if !h.store.cached(cache.CompanyJobsKey(1, 10)) {
		t.Fatal("company jobs at college should be cached")
	}
}
