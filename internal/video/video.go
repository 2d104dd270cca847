package video

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/crashserver/crashfaces/internal/config"
	"github.com/crashserver/crashfaces/internal/frames"
)

type VideoEncoder interface {
	Encode(ctx context.Context, frameDir string, finalPath string, params config.EncodeParams) error
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Encode(ctx context.Context, frameDir string, finalPath string, params config.EncodeParams) error {
	args := e.buildFFmpegArgs(frameDir, finalPath, params)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg encode error: %w, output: %s", err, string(out))
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(frameDir, finalPath string, p config.EncodeParams) []string {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", filepath.Join(frameDir, frames.FramePattern),
		// Квадратный выход фиксированного размера, даже если кадр кривой
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
			p.Size, p.Size, p.Size, p.Size),
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	}

	// Качество в зависимости от энкодера
	switch p.Encoder {
	case "h264_videotoolbox":
		bitrate := p.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args,
			"-profile:v", "baseline",
			"-level", "3.1",
			"-crf", fmt.Sprintf("%d", p.Quality),
			"-preset", "medium",
		)
	}

	args = append(args,
		"-maxrate", "8M",
		"-bufsize", "16M",
		"-r", fmt.Sprintf("%d", p.FPS),
		"-g", fmt.Sprintf("%d", p.FPS*2),
		"-an",
		"-movflags", "+faststart",
		finalPath,
	)
	return args
}
