// Package sqs provides validated builders for Amazon SQS Terraform resources.
package sqs

import (
	"encoding/json"
	"fmt"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/interp"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Queue describes an aws_sqs_queue resource.
type Queue struct {
	Name                         string `json:"name,omitempty"`
	FifoQueue                    bool   `json:"fifo_queue,omitempty"`
	ContentBasedDeduplication    bool   `json:"content_based_deduplication,omitempty"`
	DeduplicationScope           string `json:"deduplication_scope,omitempty"`
	FifoThroughputLimit          string `json:"fifo_throughput_limit,omitempty"`
	VisibilityTimeoutSeconds     int    `json:"visibility_timeout_seconds,omitempty"`
	MessageRetentionSeconds      int    `json:"message_retention_seconds,omitempty"`
	MaxMessageSize               int    `json:"max_message_size,omitempty"`
	DelaySeconds                 int    `json:"delay_seconds,omitempty"`
	ReceiveWaitTimeSeconds       int    `json:"receive_wait_time_seconds,omitempty"`
	KmsMasterKeyID               string `json:"kms_master_key_id,omitempty"`
	KmsDataKeyReusePeriodSeconds int    `json:"kms_data_key_reuse_period_seconds,omitempty"`
	SqsManagedSseEnabled         bool   `json:"sqs_managed_sse_enabled,omitempty"`
	RedrivePolicy                string `json:"redrive_policy,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (Queue) ResourceType() string { return "aws_sqs_queue" }

// RedrivePolicy is the dead-letter configuration serialized into the
// redrive_policy attribute.
type RedrivePolicy struct {
	DeadLetterTargetArn string `json:"deadLetterTargetArn"`
	MaxReceiveCount     int    `json:"maxReceiveCount"`
}

// Render serializes the policy to the JSON string form the attribute expects.
func (p RedrivePolicy) Render() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (q *Queue) applyDefaults() {
	if q.VisibilityTimeoutSeconds == 0 {
		q.VisibilityTimeoutSeconds = 30
	}
	if q.MessageRetentionSeconds == 0 {
		q.MessageRetentionSeconds = 345600
	}
	if q.MaxMessageSize == 0 {
		q.MaxMessageSize = 262144
	}
}

// Validate checks the queue attributes.
func (q Queue) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "name", q.Name != "")
	schema.StringLength(&errs, "name", q.Name, 1, 80)

	// FIFO naming is bidirectional: the suffix and the flag must agree
	hasFifoSuffix := strings.HasSuffix(q.Name, ".fifo")
	if q.FifoQueue && !hasFifoSuffix {
		errs.Add("name", "%q must end in .fifo when fifo_queue is true", q.Name)
	}
	if !q.FifoQueue && hasFifoSuffix {
		errs.Add("fifo_queue", "must be true when the queue name ends in .fifo")
	}

	schema.ForbiddenWhen(&errs, "content_based_deduplication", "fifo_queue is false", !q.FifoQueue, q.ContentBasedDeduplication)
	schema.ForbiddenWhen(&errs, "deduplication_scope", "fifo_queue is false", !q.FifoQueue, q.DeduplicationScope != "")
	schema.ForbiddenWhen(&errs, "fifo_throughput_limit", "fifo_queue is false", !q.FifoQueue, q.FifoThroughputLimit != "")
	schema.OneOf(&errs, "deduplication_scope", q.DeduplicationScope, "messageGroup", "queue")
	schema.OneOf(&errs, "fifo_throughput_limit", q.FifoThroughputLimit, "perQueue", "perMessageGroupId")
	schema.RequiredWhen(&errs, "deduplication_scope", "fifo_throughput_limit is perMessageGroupId",
		q.FifoThroughputLimit == "perMessageGroupId", q.DeduplicationScope == "messageGroup")

	schema.IntBetween(&errs, "visibility_timeout_seconds", q.VisibilityTimeoutSeconds, 0, 43200)
	schema.IntBetween(&errs, "message_retention_seconds", q.MessageRetentionSeconds, 60, 1209600)
	schema.IntBetween(&errs, "max_message_size", q.MaxMessageSize, 1024, 262144)
	schema.IntBetween(&errs, "delay_seconds", q.DelaySeconds, 0, 900)
	schema.IntBetween(&errs, "receive_wait_time_seconds", q.ReceiveWaitTimeSeconds, 0, 20)

	schema.ConflictsWith(&errs, "kms_master_key_id", "sqs_managed_sse_enabled", q.KmsMasterKeyID != "" && q.SqsManagedSseEnabled)
	if q.KmsDataKeyReusePeriodSeconds != 0 {
		schema.IntBetween(&errs, "kms_data_key_reuse_period_seconds", q.KmsDataKeyReusePeriodSeconds, 60, 86400)
	}

	if q.RedrivePolicy != "" {
		var p RedrivePolicy
		if err := json.Unmarshal([]byte(q.RedrivePolicy), &p); err != nil {
			errs.Add("redrive_policy", "not valid JSON: %v", err)
		} else {
			schema.Required(&errs, "redrive_policy.deadLetterTargetArn", p.DeadLetterTargetArn != "")
			schema.IntBetween(&errs, "redrive_policy.maxReceiveCount", p.MaxReceiveCount, 1, 1000)
		}
	}

	return errs.OrNil()
}

// AddQueue validates the attributes and attaches an aws_sqs_queue block to
// the document.
func AddQueue(doc *tfwire.Document, name string, q Queue) (QueueReference, error) {
	q.applyDefaults()
	if err := q.Validate(); err != nil {
		return QueueReference{}, fmt.Errorf("aws_sqs_queue.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(q)
	if err != nil {
		return QueueReference{}, fmt.Errorf("aws_sqs_queue.%s: %w", name, err)
	}
	if err := doc.AddResource(q.ResourceType(), name, attrs); err != nil {
		return QueueReference{}, err
	}

	return QueueReference{Name: name, queue: q}, nil
}

// AddQueueWithPolicy attaches the queue plus an aws_sqs_queue_policy block
// binding the given policy document to it.
func AddQueueWithPolicy(doc *tfwire.Document, name string, q Queue, policy interp.PolicyDocument) (QueueReference, error) {
	ref, err := AddQueue(doc, name, q)
	if err != nil {
		return QueueReference{}, err
	}

	if err := policy.Validate(); err != nil {
		return QueueReference{}, fmt.Errorf("aws_sqs_queue_policy.%s: %w", name, err)
	}
	rendered, err := policy.Render()
	if err != nil {
		return QueueReference{}, fmt.Errorf("aws_sqs_queue_policy.%s: %w", name, err)
	}

	err = doc.AddResource("aws_sqs_queue_policy", name, map[string]any{
		"queue_url": ref.ID().String(),
		"policy":    rendered,
	})
	if err != nil {
		return QueueReference{}, err
	}
	return ref, nil
}

// QueueReference is a handle to a declared aws_sqs_queue.
type QueueReference struct {
	// Name is the symbolic resource name
	Name string

	queue Queue
}

func (r QueueReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_sqs_queue", r.Name, attr)
}

// ID is the queue URL.
func (r QueueReference) ID() tfwire.Reference { return r.ref("id") }

// Arn is the queue ARN.
func (r QueueReference) Arn() tfwire.Reference { return r.ref("arn") }

// URL is the queue URL (same value as ID).
func (r QueueReference) URL() tfwire.Reference { return r.ref("url") }

// QueueName is the declared queue name.
func (r QueueReference) QueueName() string { return r.queue.Name }

// IsFifo reports whether this is a FIFO queue.
func (r QueueReference) IsFifo() bool { return r.queue.FifoQueue }

// standard/FIFO request pricing per million, after the free tier
const (
	standardPerMillion = 0.40
	fifoPerMillion     = 0.50
	freeTierRequests   = 1_000_000
)

// MonthlyCostEstimate returns a rough monthly cost in USD for the given
// request volume.
func (r QueueReference) MonthlyCostEstimate(monthlyRequests int64) float64 {
	billable := monthlyRequests - freeTierRequests
	if billable <= 0 {
		return 0
	}
	perMillion := standardPerMillion
	if r.queue.FifoQueue {
		perMillion = fifoPerMillion
	}
	return float64(billable) / 1_000_000 * perMillion
}
