package service

import (
	"testing"

	"fanstream/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateGate(t *testing.T) {
	tests := []struct {
		name        string
		input       GateInput
		wantAllowed bool
		wantReasons []string
	}{
		{
			name:        "免费内容无条件放行",
			input:       GateInput{},
			wantAllowed: true,
		},
		{
			name:        "作者看自己的付费内容",
			input:       GateInput{IsOwner: true, TokenCost: 500, HasPassword: true},
			wantAllowed: true,
		},
		{
			name:        "付费内容未解锁",
			input:       GateInput{TokenCost: 500},
			wantAllowed: false,
			wantReasons: []string{AccessReasonLocked},
		},
		{
			name:        "付费内容已解锁",
			input:       GateInput{TokenCost: 500, Unlocked: true},
			wantAllowed: true,
		},
		{
			name:        "需要点赞但没点",
			input:       GateInput{ViewCondition: model.ViewConditionLike},
			wantAllowed: false,
			wantReasons: []string{AccessReasonNeedLike},
		},
		{
			name:        "需要评论且已评论",
			input:       GateInput{ViewCondition: model.ViewConditionComment, ConditionMet: true},
			wantAllowed: true,
		},
		{
			name:        "需要订阅但没订阅",
			input:       GateInput{ViewCondition: model.ViewConditionSubscription},
			wantAllowed: false,
			wantReasons: []string{AccessReasonNeedSubscribe},
		},
		{
			name:        "口令错误",
			input:       GateInput{HasPassword: true, PasswordOK: false},
			wantAllowed: false,
			wantReasons: []string{AccessReasonNeedPassword},
		},
		{
			name:        "口令正确",
			input:       GateInput{HasPassword: true, PasswordOK: true},
			wantAllowed: true,
		},
		{
			name: "多重门槛同时不满足",
			input: GateInput{
				TokenCost:     100,
				ViewCondition: model.ViewConditionSubscription,
				HasPassword:   true,
			},
			wantAllowed: false,
			wantReasons: []string{AccessReasonLocked, AccessReasonNeedSubscribe, AccessReasonNeedPassword},
		},
		{
			name: "多重门槛全部满足",
			input: GateInput{
				TokenCost:     100,
				Unlocked:      true,
				ViewCondition: model.ViewConditionLike,
				ConditionMet:  true,
				HasPassword:   true,
				PasswordOK:    true,
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateGate(tt.input)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantReasons, got.Reasons)
		})
	}
}
