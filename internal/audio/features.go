package audio

import (
	"math"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// ExtractFeatures computes the per-frame feature set from raw samples and
// their magnitude spectrum. Event fields (onset, beat) are filled in by the
// beat detector afterwards.
func ExtractFeatures(samples []float32, spectrum []float32, sampleRate int) frame.AudioFeatures {
	var f frame.AudioFeatures

	if len(samples) > 0 {
		var sumSq float64
		var peak float32
		crossings := 0
		prev := samples[0]
		for _, s := range samples {
			sumSq += float64(s) * float64(s)
			if a := abs32(s); a > peak {
				peak = a
			}
			if (s >= 0) != (prev >= 0) {
				crossings++
			}
			prev = s
		}
		f.RMS = clamp01(float32(math.Sqrt(sumSq / float64(len(samples)))))
		f.Peak = clamp01(peak)
		f.ZeroCrossingRate = clamp01(float32(crossings) / float32(len(samples)))
	}

	if len(spectrum) > 1 {
		binHz := float32(sampleRate) / float32((len(spectrum)-1)*2)

		f.SubBass = bandEnergy(spectrum, 20, 60, binHz)
		f.Bass = bandEnergy(spectrum, 60, 250, binHz)
		f.LowMid = bandEnergy(spectrum, 250, 500, binHz)
		f.Mid = bandEnergy(spectrum, 500, 2000, binHz)
		f.HighMid = bandEnergy(spectrum, 2000, 4000, binHz)
		f.Presence = bandEnergy(spectrum, 4000, 6000, binHz)
		f.Brilliance = bandEnergy(spectrum, 6000, 20000, binHz)

		var total float64
		for _, m := range spectrum {
			total += float64(m)
		}

		if total > 1e-10 {
			var weighted float64
			for i, m := range spectrum {
				weighted += float64(i) * float64(binHz) * float64(m)
			}
			f.SpectralCentroid = clamp01(float32(weighted / total / 20000.0))

			n := float64(len(spectrum))
			var logSum float64
			for _, m := range spectrum {
				logSum += math.Log(float64(m) + 1e-10)
			}
			geoMean := math.Exp(logSum / n)
			arithMean := total / n
			f.SpectralFlatness = clamp01(float32(geoMean / arithMean))

			// Rolloff: lowest frequency below which 85% of the energy sits.
			target := total * 0.85
			var acc float64
			rolloffBin := len(spectrum) - 1
			for i, m := range spectrum {
				acc += float64(m)
				if acc >= target {
					rolloffBin = i
					break
				}
			}
			f.SpectralRolloff = clamp01(float32(rolloffBin) * binHz / 20000.0)

			// Brightness: energy fraction at and above 3 kHz.
			brightBin := int(3000.0 / binHz)
			if brightBin < len(spectrum) {
				var high float64
				for _, m := range spectrum[brightBin:] {
					high += float64(m)
				}
				f.TimbralBrightness = clamp01(float32(high / total))
			}

			// Roughness: adjacent-bin magnitude beating, strongest where
			// partials sit close together.
			var rough float64
			for i := 1; i < len(spectrum); i++ {
				rough += math.Abs(float64(spectrum[i]) - float64(spectrum[i-1]))
			}
			f.TimbralRoughness = clamp01(float32(rough / (total + 1e-10) / 2.0))
		}

		fillSpectrumBands(spectrum, binHz, &f.Spectrum)
	}

	return f
}

// bandEnergy returns the mean magnitude over the bins covering a band.
func bandEnergy(spectrum []float32, lowHz, highHz, binHz float32) float32 {
	lo := int(lowHz / binHz)
	hi := int(highHz / binHz)
	if hi > len(spectrum) {
		hi = len(spectrum)
	}
	if lo >= hi {
		return 0
	}
	var sum float32
	for _, m := range spectrum[lo:hi] {
		sum += m
	}
	return clamp01(sum / float32(hi-lo))
}

// fillSpectrumBands computes 32 log-spaced bands from 20 Hz to 20 kHz.
func fillSpectrumBands(spectrum []float32, binHz float32, bands *[frame.SpectrumBands]float32) {
	logMin := math.Log(20.0)
	logMax := math.Log(20000.0)

	for i := range bands {
		fLo := int(math.Exp(logMin+(logMax-logMin)*float64(i)/float64(frame.SpectrumBands)) / float64(binHz))
		fHi := int(math.Exp(logMin+(logMax-logMin)*float64(i+1)/float64(frame.SpectrumBands)) / float64(binHz))

		lo := fLo
		if lo > len(spectrum) {
			lo = len(spectrum)
		}
		hi := fHi
		if hi > len(spectrum) {
			hi = len(spectrum)
		}
		if hi <= lo {
			hi = lo + 1
		}

		if lo < len(spectrum) && hi <= len(spectrum) {
			var sum float32
			for _, m := range spectrum[lo:hi] {
				sum += m
			}
			bands[i] = clamp01(sum / float32(hi-lo))
		} else {
			bands[i] = 0
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
