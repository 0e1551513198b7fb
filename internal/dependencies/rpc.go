package dependencies

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"genstudio/internal/generator"
	"genstudio/types"
)

// Rpc talks to the media worker. Requests and responses are
// google.protobuf.Struct messages so the worker can evolve its fields
// without a shared generated package.
type Rpc struct {
	conn    *grpc.ClientConn
	service string
	logger  *log.Logger
}

func NewRpc(target, service string, opts ...grpc.DialOption) (*Rpc, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating newrpc: %w", err)
	}

	return &Rpc{
		conn:    conn,
		service: service,
		logger:  log.With("component", "rpc", "target", target),
	}, nil
}

func (r *Rpc) Name() string {
	return "grpc"
}

func (r *Rpc) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s request: %w", method, err)
	}

	out := &structpb.Struct{}
	if err := r.conn.Invoke(ctx, "/"+r.service+"/"+method, in, out); err != nil {
		switch status.Code(err) {
		case codes.DeadlineExceeded:
			return nil, fmt.Errorf("%w: %s: %v", generator.ErrTimeout, method, err)
		case codes.Unavailable:
			return nil, fmt.Errorf("%w: %s: %v", generator.ErrUnavailable, method, err)
		}
		return nil, fmt.Errorf("error calling %s: %w", method, err)
	}

	fv := out.GetFields()
	if s := fv["status"].GetStringValue(); s != "" && s != types.StatusSuccess {
		msg := fv["message"].GetStringValue()
		if msg == "" {
			msg = "worker reported " + s
		}
		return nil, &generator.RejectedError{Message: msg}
	}
	return out, nil
}

func (r *Rpc) GenerateImage(ctx context.Context, job generator.ImageJob) (generator.Image, error) {
	out, err := r.invoke(ctx, "GenerateImage", map[string]any{
		"recordId":   job.RecordID,
		"prompt":     job.Prompt,
		"style":      job.Style,
		"resolution": job.Resolution,
		"format":     job.Format,
	})
	if err != nil {
		return generator.Image{}, err
	}

	url := out.GetFields()["imageUrl"].GetStringValue()
	if url == "" {
		return generator.Image{}, &generator.RejectedError{Message: "worker returned no image url"}
	}
	return generator.Image{URL: url}, nil
}

func (r *Rpc) GenerateVideo(ctx context.Context, job generator.VideoJob) (generator.Video, error) {
	out, err := r.invoke(ctx, "GenerateVideo", map[string]any{
		"recordId":   job.RecordID,
		"prompt":     job.Prompt,
		"style":      job.Style,
		"duration":   job.Duration,
		"resolution": job.Resolution,
		"fps":        job.Fps,
	})
	if err != nil {
		return generator.Video{}, err
	}

	fv := out.GetFields()
	v := generator.Video{
		URL:          fv["videoUrl"].GetStringValue(),
		ThumbnailURL: fv["thumbnailUrl"].GetStringValue(),
		FileSize:     int64(fv["fileSize"].GetNumberValue()),
	}
	if v.URL == "" {
		return generator.Video{}, &generator.RejectedError{Message: "worker returned no video url"}
	}
	return v, nil
}

func (r *Rpc) Close() {
	if err := r.conn.Close(); err != nil {
		r.logger.Warn("error closing rpc connection", "err", err)
	}
}
