package sqs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/interp"
)

func TestAddQueueDefaults(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddQueue(doc, "jobs", Queue{Name: "jobs"})
	require.NoError(t, err)

	attrs, ok := doc.Resource("aws_sqs_queue", "jobs")
	require.True(t, ok)

	assert.EqualValues(t, 30, attrs["visibility_timeout_seconds"])
	assert.EqualValues(t, 345600, attrs["message_retention_seconds"])
	assert.EqualValues(t, 262144, attrs["max_message_size"])
	assert.Equal(t, "${aws_sqs_queue.jobs.arn}", ref.Arn().String())
	assert.False(t, ref.IsFifo())
}

func TestQueueFifoRules(t *testing.T) {
	tests := []struct {
		name    string
		in      Queue
		wantErr string
	}{
		{
			name:    "fifo flag needs suffix",
			in:      Queue{Name: "orders", FifoQueue: true},
			wantErr: "must end in .fifo",
		},
		{
			name:    "suffix needs fifo flag",
			in:      Queue{Name: "orders.fifo"},
			wantErr: "fifo_queue: must be true",
		},
		{
			name:    "dedup requires fifo",
			in:      Queue{Name: "orders", ContentBasedDeduplication: true},
			wantErr: "content_based_deduplication: cannot be set when fifo_queue is false",
		},
		{
			name: "per message group needs messageGroup scope",
			in: Queue{
				Name:                "orders.fifo",
				FifoQueue:           true,
				FifoThroughputLimit: "perMessageGroupId",
				DeduplicationScope:  "queue",
			},
			wantErr: "deduplication_scope",
		},
		{
			name: "valid fifo",
			in: Queue{
				Name:                "orders.fifo",
				FifoQueue:           true,
				FifoThroughputLimit: "perMessageGroupId",
				DeduplicationScope:  "messageGroup",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddQueue(tfwire.NewDocument(), "q", tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQueueRanges(t *testing.T) {
	tests := []struct {
		name    string
		in      Queue
		wantErr string
	}{
		{
			name:    "visibility out of range",
			in:      Queue{Name: "q", VisibilityTimeoutSeconds: 50000},
			wantErr: "visibility_timeout_seconds",
		},
		{
			name:    "retention too short",
			in:      Queue{Name: "q", MessageRetentionSeconds: 30},
			wantErr: "message_retention_seconds",
		},
		{
			name:    "delay too long",
			in:      Queue{Name: "q", DelaySeconds: 901},
			wantErr: "delay_seconds",
		},
		{
			name:    "kms reuse period too short",
			in:      Queue{Name: "q", KmsMasterKeyID: "alias/app", KmsDataKeyReusePeriodSeconds: 30},
			wantErr: "kms_data_key_reuse_period_seconds",
		},
		{
			name:    "kms conflicts with managed sse",
			in:      Queue{Name: "q", KmsMasterKeyID: "alias/app", SqsManagedSseEnabled: true},
			wantErr: "kms_master_key_id: conflicts with sqs_managed_sse_enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddQueue(tfwire.NewDocument(), "q", tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQueueRedrivePolicy(t *testing.T) {
	rendered, err := RedrivePolicy{
		DeadLetterTargetArn: "${aws_sqs_queue.dead_letter.arn}",
		MaxReceiveCount:     5,
	}.Render()
	require.NoError(t, err)

	_, err = AddQueue(tfwire.NewDocument(), "jobs", Queue{Name: "jobs", RedrivePolicy: rendered})
	assert.NoError(t, err)

	bad, err := RedrivePolicy{DeadLetterTargetArn: "${aws_sqs_queue.dead_letter.arn}"}.Render()
	require.NoError(t, err)
	_, err = AddQueue(tfwire.NewDocument(), "jobs", Queue{Name: "jobs", RedrivePolicy: bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redrive_policy.maxReceiveCount")

	_, err = AddQueue(tfwire.NewDocument(), "jobs", Queue{Name: "jobs", RedrivePolicy: "{not json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestAddQueueWithPolicy(t *testing.T) {
	doc := tfwire.NewDocument()

	policy := interp.NewPolicyDocument(interp.PolicyStatement{
		Effect:    "Allow",
		Principal: interp.ServicePrincipal{"sns.amazonaws.com"},
		Action:    "sqs:SendMessage",
		Resource:  "*",
	})

	ref, err := AddQueueWithPolicy(doc, "events", Queue{Name: "events"}, policy)
	require.NoError(t, err)

	attrs, ok := doc.Resource("aws_sqs_queue_policy", "events")
	require.True(t, ok)
	assert.Equal(t, ref.ID().String(), attrs["queue_url"])
	assert.Contains(t, attrs["policy"], "sqs:SendMessage")
}

func TestQueueMonthlyCostEstimate(t *testing.T) {
	std := QueueReference{Name: "q", queue: Queue{Name: "q"}}
	fifo := QueueReference{Name: "q", queue: Queue{Name: "q.fifo", FifoQueue: true}}

	assert.Zero(t, std.MonthlyCostEstimate(500_000))
	assert.InDelta(t, 3.6, std.MonthlyCostEstimate(10_000_000), 0.001)
	assert.InDelta(t, 4.5, fifo.MonthlyCostEstimate(10_000_000), 0.001)
}
