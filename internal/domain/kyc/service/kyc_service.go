package service

import (
	"errors"
	"mime/multipart"

	accountModel "gas_marketplace/internal/domain/account/model"
	"gas_marketplace/internal/domain/kyc/model"
	"gas_marketplace/internal/domain/kyc/repository"
	"gas_marketplace/internal/pkg/uploader"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmitInput 材料提交输入，文件为空表示沿用已有 URL
type SubmitInput struct {
	IDDocument *multipart.FileHeader
	Selfie     *multipart.FileHeader
	License    *multipart.FileHeader
}

// KycService 实名审核服务
type KycService interface {
	Submit(accountID, actor string, input SubmitInput) (*model.Submission, error)
	Update(accountID string, input SubmitInput) (*model.Submission, error)
	Get(accountID string) (*model.Submission, error)
	Review(submissionID, decision, note string) error
}

type kycService struct {
	repo repository.KycRepository
}

// NewKycService 创建实名审核服务
func NewKycService(repo repository.KycRepository) KycService {
	return &kycService{repo: repo}
}

func (s *kycService) Submit(accountID, actor string, input SubmitInput) (*model.Submission, error) {
	if actor != accountModel.ActorVendor && actor != accountModel.ActorRider {
		return nil, apperr.Forbidden("only vendors and riders submit verification documents")
	}
	if _, err := s.repo.GetByAccount(accountID); err == nil {
		return nil, apperr.Conflict("verification documents already submitted")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if input.IDDocument == nil {
		return nil, apperr.Validation("identity document is required")
	}

	submission := &model.Submission{
		AccountID: accountID,
		ActorType: actor,
		Status:    model.StatusPending,
	}
	if err := s.applyUploads(submission, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *kycService) Update(accountID string, input SubmitInput) (*model.Submission, error) {
	submission, err := s.repo.GetByAccount(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no verification submission on file")
		}
		return nil, err
	}
	if submission.Status == model.StatusApproved {
		return nil, apperr.InvalidState("approved documents can no longer be changed")
	}

	if err := s.applyUploads(submission, input); err != nil {
		return nil, err
	}
	// 被驳回后重新提交，回到待审
	submission.Status = model.StatusPending
	submission.ReviewerNote = ""
	if err := s.repo.Update(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *kycService) Get(accountID string) (*model.Submission, error) {
	submission, err := s.repo.GetByAccount(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no verification submission on file")
		}
		return nil, err
	}
	return submission, nil
}

func (s *kycService) Review(submissionID, decision, note string) error {
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return apperr.Validation("decision must be approved or rejected")
	}

	rows, err := s.repo.SetStatus(submissionID, decision, note)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.repo.GetByID(submissionID); errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("verification submission not found")
		}
		return apperr.InvalidState("submission has already been reviewed")
	}

	logger.Log.Info("kyc reviewed",
		zap.String("submission", submissionID), zap.String("decision", decision))
	return nil
}

func (s *kycService) applyUploads(submission *model.Submission, input SubmitInput) error {
	if input.IDDocument == nil && input.Selfie == nil && input.License == nil {
		return nil
	}
	if uploader.GlobalUploader == nil {
		return apperr.InvalidState("document storage is not configured")
	}

	if input.IDDocument != nil {
		url, err := uploader.GlobalUploader.UploadFile("kyc/id", input.IDDocument)
		if err != nil {
			return apperr.Upstream("identity document upload failed", err)
		}
		submission.IDDocumentURL = url
	}
	if input.Selfie != nil {
		url, err := uploader.GlobalUploader.UploadFile("kyc/selfie", input.Selfie)
		if err != nil {
			return apperr.Upstream("selfie upload failed", err)
		}
		submission.SelfieURL = url
	}
	if input.License != nil {
		url, err := uploader.GlobalUploader.UploadFile("kyc/license", input.License)
		if err != nil {
			return apperr.Upstream("license upload failed", err)
		}
		submission.LicenseURL = url
	}
	return nil
}
