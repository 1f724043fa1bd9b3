package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/adminerrors"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/filter"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func toFilterSpec(spec *filter.Spec) *adminpb.FilterSpec {
	if spec == nil {
		return nil
	}
	return &adminpb.FilterSpec{Name: spec.ClassName, Data: spec.Payload}
}

// MigratePartitions kicks off a background partition migration on the
// stealer node; the donor is never contacted directly by the client.
func (c *Client) MigratePartitions(ctx context.Context, donorID, stealerID int32, store string, partitions []int32, spec *filter.Spec) (int64, error) {
	req := &adminpb.AdminRequest{
		Type: adminpb.InitiateFetchAndUpdate,
		InitiateFetchAndUpdate: &adminpb.InitiateFetchAndUpdateRequest{
			NodeID:     donorID,
			Partitions: partitions,
			Store:      store,
			Filter:     toFilterSpec(spec),
		},
	}

	data, err := c.sendAndReceive(ctx, stealerID, req)
	if err != nil {
		return 0, err
	}
	resp, err := adminpb.UnmarshalAsyncOperationStatusResponse(data)
	if err != nil {
		return 0, adminerrors.Encoding(err)
	}
	if resp.HasError() {
		return 0, c.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}
	return int64(resp.RequestID), nil
}

// GetAsyncRequestStatus polls a background operation once. The server
// removes a completed operation's state as a side effect of this call;
// a second query against the same requestId may come back not-found
// rather than "already complete". Callers should treat that ambiguity
// uniformly rather than try to disambiguate it.
func (c *Client) GetAsyncRequestStatus(ctx context.Context, nodeID int32, requestID int64) (AsyncOperationStatus, error) {
	req := &adminpb.AdminRequest{
		Type: adminpb.AsyncOperationStatus,
		AsyncOperationStatus: &adminpb.AsyncOperationStatusRequest{
			RequestID: int32(requestID),
		},
	}

	data, err := c.sendAndReceive(ctx, nodeID, req)
	if err != nil {
		return AsyncOperationStatus{}, err
	}
	resp, err := adminpb.UnmarshalAsyncOperationStatusResponse(data)
	if err != nil {
		return AsyncOperationStatus{}, adminerrors.Encoding(err)
	}
	if resp.HasError() {
		return AsyncOperationStatus{}, c.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}
	return AsyncOperationStatus{
		RequestID:   int64(resp.RequestID),
		Description: resp.Description,
		Status:      resp.Status,
		Complete:    resp.Complete,
	}, nil
}

// WaitForCompletion polls GetAsyncRequestStatus with a capped exponential
// backoff (initial delay 250ms, growth factor 4, cap 60s) until the
// operation completes or maxWait elapses. The growth factor of 4 is
// intentional and matches the deployed servers' expectations; it is not
// a doubling schedule.
func (c *Client) WaitForCompletion(ctx context.Context, nodeID int32, requestID int64, maxWait time.Duration) error {
	start := time.Now()
	deadline := start.Add(maxWait)
	delay := c.cfg.Async.InitialDelay
	waitID := uuid.New().String()

	for {
		if c.metrics != nil {
			c.metrics.RecordAsyncPoll()
		}
		status, err := c.GetAsyncRequestStatus(ctx, nodeID, requestID)
		if err != nil {
			return err
		}
		c.logger.Debug("polled async request",
			zap.String("wait_id", waitID),
			zap.Int32("node_id", nodeID),
			zap.Int64("request_id", requestID),
			zap.Bool("complete", status.Complete))
		if status.Complete {
			if c.metrics != nil {
				c.metrics.RecordAsyncWait(time.Since(start).Seconds(), false)
			}
			return nil
		}
		if time.Now().After(deadline) {
			if c.metrics != nil {
				c.metrics.RecordAsyncWait(time.Since(start).Seconds(), true)
			}
			c.logger.Warn("wait for completion timed out",
				zap.String("wait_id", waitID), zap.Int32("node_id", nodeID), zap.Int64("request_id", requestID))
			return &adminerrors.TimeoutError{RequestID: requestID, MaxWait: maxWait}
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("admin: wait for completion of request %d: %w", requestID, ctx.Err())
		}

		if delay < c.cfg.Async.MaxDelay {
			delay = time.Duration(float64(delay) * c.cfg.Async.BackoffFactor)
			if delay > c.cfg.Async.MaxDelay {
				delay = c.cfg.Async.MaxDelay
			}
		}

		if time.Now().After(deadline) {
			if c.metrics != nil {
				c.metrics.RecordAsyncWait(time.Since(start).Seconds(), true)
			}
			return &adminerrors.TimeoutError{RequestID: requestID, MaxWait: maxWait}
		}
	}
}

// DeletePartitions deletes every entry in the given partitions on nodeID
// matching an optional filter, returning how many entries were deleted.
func (c *Client) DeletePartitions(ctx context.Context, nodeID int32, store string, partitions []int32, spec *filter.Spec) (int, error) {
	req := &adminpb.AdminRequest{
		Type: adminpb.DeletePartitionEntries,
		DeletePartitionEntries: &adminpb.DeletePartitionEntriesRequest{
			Partitions: partitions,
			Store:      store,
			Filter:     toFilterSpec(spec),
		},
	}

	data, err := c.sendAndReceive(ctx, nodeID, req)
	if err != nil {
		return 0, err
	}
	resp, err := adminpb.UnmarshalDeletePartitionEntriesResponse(data)
	if err != nil {
		return 0, adminerrors.Encoding(err)
	}
	if resp.HasError() {
		return 0, c.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}
	return int(resp.Count), nil
}
