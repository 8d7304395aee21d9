package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemberLevelThresholds(t *testing.T) {
	cases := []struct {
		name        string
		consumption string
		points      int
		want        MemberLevel
	}{
		{"new member", "0", 0, MemberLevelNormal},
		{"just under bronze", "4999.99", 0, MemberLevelNormal},
		{"bronze on spend", "5000", 0, MemberLevelBronze},
		{"bronze on points alone", "0", 5000, MemberLevelBronze},
		{"silver", "10000", 0, MemberLevelSilver},
		{"gold", "20000", 0, MemberLevelGold},
		{"platinum", "50000", 0, MemberLevelPlatinum},
		{"points outrank spend", "4999", 50000, MemberLevelPlatinum},
		{"spend outranks points", "20000", 100, MemberLevelGold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := memberLevelFor(decimal.RequireFromString(tc.consumption), tc.points)
			if got != tc.want {
				t.Fatalf("memberLevelFor(%s, %d) = %s; want %s", tc.consumption, tc.points, got, tc.want)
			}
		})
	}
}
