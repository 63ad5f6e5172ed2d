package ffmpeg

import "github.com/bairigao/video-transcoding/internal/domain"

type codecSpec struct {
	Video string
	Audio string
	Extra []string
}

var faststart = []string{"-movflags", "+faststart"}

// codecTable maps a target container to its encoders. Add a row to support
// another container.
var codecTable = map[domain.Format]codecSpec{
	domain.FormatMP4:  {Video: "libx264", Audio: "aac", Extra: faststart},
	domain.FormatMOV:  {Video: "libx264", Audio: "aac", Extra: faststart},
	domain.FormatAVI:  {Video: "libxvid", Audio: "libmp3lame"},
	domain.FormatWebM: {Video: "libvpx", Audio: "libvorbis"},
}

var defaultCodecs = codecSpec{Video: "libx264", Audio: "aac", Extra: faststart}

func codecsFor(format domain.Format) codecSpec {
	if spec, ok := codecTable[format]; ok {
		return spec
	}
	return defaultCodecs
}

func buildArgs(inputPath, outputPath string, format domain.Format) []string {
	spec := codecsFor(format)
	args := []string{
		"-hide_banner",
		"-y",
		"-i", inputPath,
		"-c:v", spec.Video,
		"-c:a", spec.Audio,
	}
	args = append(args, spec.Extra...)
	args = append(args, "-progress", "pipe:1", "-nostats", outputPath)
	return args
}
