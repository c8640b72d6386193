package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

const (
	columnNameSubmittedAt = "submitted_at"
	columnNameStatus      = "status"

	orderSubmittedAtDescending = columnNameSubmittedAt + " DESC"

	errorMessageSubmissionNotFound = "storage: submission not found"
	errorMessageInsertSubmission   = "storage: insert submission"
	errorMessageFindSubmission     = "storage: find submission"
	errorMessageListSubmissions    = "storage: list submissions"
	errorMessageUpdateSubmission   = "storage: update submission"
	errorMessageDeleteSubmission   = "storage: delete submission"
	errorMessageCountSubmissions   = "storage: count submissions"
)

// ErrSubmissionNotFound indicates no submission exists with the requested identifier.
var ErrSubmissionNotFound = errors.New(errorMessageSubmissionNotFound)

// SubmissionStore persists contact submissions. Every operation touches a
// single record and is independently atomic; the underlying connection is
// safe for concurrent use.
type SubmissionStore struct {
	database *gorm.DB
}

// NewSubmissionStore creates a SubmissionStore backed by the provided database handle.
func NewSubmissionStore(database *gorm.DB) *SubmissionStore {
	return &SubmissionStore{database: database}
}

// Insert durably writes a new submission record.
func (store *SubmissionStore) Insert(ctx context.Context, submission *model.ContactSubmission) error {
	if createErr := store.database.WithContext(ctx).Create(submission).Error; createErr != nil {
		return fmt.Errorf("%s: %w", errorMessageInsertSubmission, createErr)
	}
	return nil
}

// FindByID returns the submission with the given identifier or ErrSubmissionNotFound.
func (store *SubmissionStore) FindByID(ctx context.Context, submissionID string) (model.ContactSubmission, error) {
	var submission model.ContactSubmission
	findErr := store.database.WithContext(ctx).First(&submission, "id = ?", submissionID).Error
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return model.ContactSubmission{}, ErrSubmissionNotFound
		}
		return model.ContactSubmission{}, fmt.Errorf("%s: %w", errorMessageFindSubmission, findErr)
	}
	return submission, nil
}

// ListAll returns every submission ordered by submission time, newest first.
func (store *SubmissionStore) ListAll(ctx context.Context) ([]model.ContactSubmission, error) {
	var submissions []model.ContactSubmission
	listErr := store.database.WithContext(ctx).Order(orderSubmittedAtDescending).Find(&submissions).Error
	if listErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageListSubmissions, listErr)
	}
	return submissions, nil
}

// UpdateFields applies a partial update to the submission with the given
// identifier and reports how many records matched.
func (store *SubmissionStore) UpdateFields(ctx context.Context, submissionID string, fields map[string]any) (int64, error) {
	result := store.database.WithContext(ctx).
		Model(&model.ContactSubmission{}).
		Where("id = ?", submissionID).
		Updates(fields)
	if result.Error != nil {
		return 0, fmt.Errorf("%s: %w", errorMessageUpdateSubmission, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes the submission with the given identifier permanently and
// reports how many records were deleted.
func (store *SubmissionStore) Delete(ctx context.Context, submissionID string) (int64, error) {
	result := store.database.WithContext(ctx).Delete(&model.ContactSubmission{}, "id = ?", submissionID)
	if result.Error != nil {
		return 0, fmt.Errorf("%s: %w", errorMessageDeleteSubmission, result.Error)
	}
	return result.RowsAffected, nil
}

// CountAll returns the total number of stored submissions.
func (store *SubmissionStore) CountAll(ctx context.Context) (int64, error) {
	return store.count(store.database.WithContext(ctx).Model(&model.ContactSubmission{}))
}

// CountByStatus returns the number of submissions with the given status.
func (store *SubmissionStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	return store.count(store.database.WithContext(ctx).
		Model(&model.ContactSubmission{}).
		Where(columnNameStatus+" = ?", status))
}

// CountByStatusNot returns the number of submissions whose status differs
// from the given one. Records without a stored status count as differing.
func (store *SubmissionStore) CountByStatusNot(ctx context.Context, status string) (int64, error) {
	return store.count(store.database.WithContext(ctx).
		Model(&model.ContactSubmission{}).
		Where(columnNameStatus+" IS NULL OR "+columnNameStatus+" <> ?", status))
}

func (store *SubmissionStore) count(query *gorm.DB) (int64, error) {
	var total int64
	if countErr := query.Count(&total).Error; countErr != nil {
		return 0, fmt.Errorf("%s: %w", errorMessageCountSubmissions, countErr)
	}
	return total, nil
}
