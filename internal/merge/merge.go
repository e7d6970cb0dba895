// Package merge combines locally cached partial project records with the
// authoritative remote baseline. The policy is last-writer-wins at the
// field level with no conflict detection: the remote store is assumed to
// have at most one active editor at a time.
package merge

import (
	"dario.cat/mergo"

	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/pkg/models"
)

// Assignments overlays local partial project records onto the remote
// baseline and returns the merged map. Remote-only projects pass through
// untouched; local-only projects are inserted wholesale; shared projects
// are field-merged with local non-zero fields winning, including a
// per-member merge of the nested Members map. Neither input is modified.
//
// Postcondition: every project in the result has a non-nil MemberHistory.
func Assignments(remote, local map[string]models.ProjectAssignment) map[string]models.ProjectAssignment {
	merged := make(map[string]models.ProjectAssignment, len(remote)+len(local))
	for id, rec := range remote {
		merged[id] = rec
	}

	for id, localRec := range local {
		remoteRec, exists := merged[id]
		if !exists {
			merged[id] = localRec
			continue
		}
		merged[id] = overlay(remoteRec, localRec)
	}

	for id, rec := range merged {
		merged[id] = repair(rec)
	}
	return merged
}

// overlay field-merges one local record over its remote counterpart.
func overlay(remote, local models.ProjectAssignment) models.ProjectAssignment {
	out := remote

	// Members need per-key field merging; detach the map first so mergo
	// cannot take a shortcut through it, then merge members explicitly.
	out.Members = nil
	localFields := local
	localFields.Members = nil

	if err := mergo.Merge(&out, localFields, mergo.WithOverride); err != nil {
		// mergo only fails on type mismatches, which identical static
		// types rule out; log and keep the remote side if it ever does.
		logging.Error("record overlay failed, keeping remote fields", "error", err)
		out = remote
	}

	out.Members = mergeMembers(remote.Members, local.Members)
	return out
}

// mergeMembers field-merges the nested member maps: shared members merge
// with local non-zero fields winning, remote-only and local-only members
// both survive.
func mergeMembers(remote, local map[string]models.MemberRecord) map[string]models.MemberRecord {
	if len(remote) == 0 && len(local) == 0 {
		return remote
	}

	out := make(map[string]models.MemberRecord, len(remote)+len(local))
	for id, rec := range remote {
		out[id] = rec
	}
	for id, localRec := range local {
		remoteRec, exists := out[id]
		if !exists {
			out[id] = localRec
			continue
		}
		mergedRec := remoteRec
		if err := mergo.Merge(&mergedRec, localRec, mergo.WithOverride); err != nil {
			logging.Error("member overlay failed, keeping remote fields",
				"member", id, "error", err)
			mergedRec = remoteRec
		}
		out[id] = mergedRec
	}
	return out
}

// repair enforces the merged-record invariants that neither side is
// required to supply.
func repair(rec models.ProjectAssignment) models.ProjectAssignment {
	if rec.MemberHistory == nil {
		rec.MemberHistory = []models.HistoryEntry{}
	}
	return rec
}
