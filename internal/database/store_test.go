package database

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGuildFilter(t *testing.T) {
	got := guildFilter("123456789")
	want := bson.M{"guild_id": "123456789"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("guildFilter mismatch (-want +got):\n%s", diff)
	}
}

func TestSetToolUpdate(t *testing.T) {
	tests := []struct {
		name string
		tool string
		want bson.M
	}{
		{
			name: "named tool",
			tool: "imagine",
			want: bson.M{"$set": bson.M{"tool": "imagine"}},
		},
		{
			name: "disable sentinel stored verbatim",
			tool: DisabledSentinel,
			want: bson.M{"$set": bson.M{"tool": "disabled"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := setToolUpdate(tt.tool)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("setToolUpdate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDistributionPipeline(t *testing.T) {
	pipeline := distributionPipeline()
	if len(pipeline) != 1 {
		t.Fatalf("expected single-stage pipeline, got %d stages", len(pipeline))
	}

	stage := pipeline[0]
	if stage[0].Key != "$group" {
		t.Errorf("stage key = %q, want $group", stage[0].Key)
	}

	group, ok := stage[0].Value.(bson.M)
	if !ok {
		t.Fatalf("group stage value is %T, want bson.M", stage[0].Value)
	}
	if group["_id"] != "$tool" {
		t.Errorf("group _id = %v, want $tool", group["_id"])
	}
	if diff := cmp.Diff(bson.M{"$sum": 1}, group["count"]); diff != "" {
		t.Errorf("count accumulator mismatch (-want +got):\n%s", diff)
	}
}
