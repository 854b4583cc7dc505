package model

import (
	"time"

	"k2age/core/estimate"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BinaryRun 一次双星年龄估计的输入与结果
type BinaryRun struct {
	ID              string  `json:"id" gorm:"primaryKey;size:36"`
	PrimaryMass     float64 `json:"primaryMass" gorm:"not null"`
	SecondaryMass   float64 `json:"secondaryMass" gorm:"not null"`
	PrimaryRadius   float64 `json:"primaryRadius" gorm:"not null"`
	SecondaryRadius float64 `json:"secondaryRadius" gorm:"not null"`
	Metallicity     float64 `json:"metallicity" gorm:"not null;index"`
	Eccentricity    float64 `json:"eccentricity" gorm:"not null"`
	SemiMajorAxis   float64 `json:"semiMajorAxis" gorm:"not null"`

	PrimaryOmega   *float64 `json:"primaryOmega,omitempty"`
	SecondaryOmega *float64 `json:"secondaryOmega,omitempty"`
	OrbitOmega     *float64 `json:"orbitOmega,omitempty"`

	C21       float64 `json:"c21"`
	C22       float64 `json:"c22"`
	Rotation1 string  `json:"rotation1" gorm:"size:20"`
	Rotation2 string  `json:"rotation2" gorm:"size:20"`

	ObservedK2 *float64 `json:"observedK2,omitempty"`
	Age        *float64 `json:"age,omitempty"`

	Points    []TrackPoint `json:"points,omitempty" gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `json:"createdAt"`
}

// TableName 指定表名
func (BinaryRun) TableName() string {
	return "binary_runs"
}

// BeforeCreate 自动生成 UUID
func (r *BinaryRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// TrackPoint 双星 k2 轨迹上的一个点
type TrackPoint struct {
	ID    int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	RunID string  `json:"-" gorm:"size:36;index;not null"`
	Index int     `json:"index" gorm:"column:idx;not null"`
	Age   float64 `json:"age" gorm:"not null"`
	K2    float64 `json:"k2" gorm:"column:k2;not null"`
}

// TableName 指定表名
func (TrackPoint) TableName() string {
	return "binary_track_points"
}

// Models 需要迁移的模型
func Models() []interface{} {
	return []interface{}{&BinaryRun{}, &TrackPoint{}}
}

// NewBinaryRun 由请求与结果构造记录
func NewBinaryRun(req estimate.Request, res *estimate.Result) *BinaryRun {
	run := &BinaryRun{
		PrimaryMass:     deref(req.PrimaryMass),
		SecondaryMass:   deref(req.SecondaryMass),
		PrimaryRadius:   deref(req.PrimaryRadius),
		SecondaryRadius: deref(req.SecondaryRadius),
		Metallicity:     deref(req.Metallicity),
		Eccentricity:    deref(req.Eccentricity),
		SemiMajorAxis:   deref(req.SemiMajorAxis),
		PrimaryOmega:    req.PrimaryOmega,
		SecondaryOmega:  req.SecondaryOmega,
		OrbitOmega:      req.OrbitOmega,
		C21:             res.C21.Value,
		C22:             res.C22.Value,
		Rotation1:       string(res.C21.Rotation),
		Rotation2:       string(res.C22.Rotation),
		ObservedK2:      req.ObservedK2,
		Age:             res.Age,
	}
	run.Points = make([]TrackPoint, len(res.Track))
	for i := range res.Track {
		run.Points[i] = TrackPoint{Index: i, Age: res.Ages[i], K2: res.Track[i]}
	}
	return run
}

// Track 返回按年龄排列的 (age, k2) 两列
func (r *BinaryRun) Track() (ages, k2 []float64) {
	ages = make([]float64, len(r.Points))
	k2 = make([]float64, len(r.Points))
	for i, p := range r.Points {
		ages[i], k2[i] = p.Age, p.K2
	}
	return ages, k2
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
