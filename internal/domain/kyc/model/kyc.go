package model

import (
	baseModel "gas_marketplace/pkg/model"
)

// 审核状态
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Submission 实名材料。商家和骑手各交一份，账号维度唯一。
// approved 之前材料可以反复修改，通过后锁定
type Submission struct {
	baseModel.BaseModel
	AccountID string `gorm:"type:uuid;uniqueIndex;not null" json:"accountId"`
	ActorType string `gorm:"not null" json:"actorType"`

	IDDocumentURL string `gorm:"not null" json:"idDocumentUrl"`
	SelfieURL     string `json:"selfieUrl"`

	// vendor：营业执照；rider：驾驶证
	LicenseURL string `json:"licenseUrl"`

	Status       string `gorm:"default:'pending';index" json:"status"`
	ReviewerNote string `json:"reviewerNote,omitempty"`
}

func (Submission) TableName() string {
	return "kyc_submissions"
}
