package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"docqa-be/internal/entity"
)

func TestChargeMapper_MetadataSurvivesJSONColumn(t *testing.T) {
	m := NewChargeMapper()
	charge := &entity.Charge{
		Id:            uuid.New(),
		AccountId:     uuid.New(),
		OrderId:       "DOCQA-1",
		Amount:        100,
		Currency:      "USD",
		Status:        entity.ChargeStatusPending,
		QuestionCount: 5,
		Metadata:      map[string]interface{}{"questions_count": float64(5)},
		CreatedAt:     time.Now(),
	}

	back := m.ToEntity(m.ToModel(charge))

	assert.Equal(t, charge.Metadata, back.Metadata)
	assert.Equal(t, charge.Status, back.Status)
	assert.Nil(t, m.ToEntity(nil))
}

func TestDocumentChunkMapper_KeepsVector(t *testing.T) {
	m := NewDocumentChunkMapper()
	chunk := &entity.DocumentChunk{ChunkId: "doc#0", Embedding: []float32{0.6, 0.8}}

	assert.Equal(t, []float32{0.6, 0.8}, m.ToEntity(m.ToModel(chunk)).Embedding)
}
