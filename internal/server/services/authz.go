package services

import "github.com/mini-page/Secura/internal/server/models"

// ownerOrAdmin is the single authorization rule of the vault: a resource
// owned by ownerID may be read by its owner or by an admin. Listing,
// metadata, download and audit queries all route through this predicate;
// it is duplicated nowhere else.
func ownerOrAdmin(requesterID, requesterRole, ownerID string) bool {
	return ownerID == requesterID || requesterRole == models.RoleAdmin
}
