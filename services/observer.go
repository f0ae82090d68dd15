package services

import "gulf-property-analyzer/utils"

// Observer receives batch progress. Implementations must be safe for concurrent use.
type Observer interface {
	OnProgress(done, total int)
	OnComplete(analyzed, failed int)
}

// NopObserver ignores all progress.
type NopObserver struct{}

func (NopObserver) OnProgress(int, int) {}
func (NopObserver) OnComplete(int, int) {}

// LogObserver logs progress every Every listings.
type LogObserver struct {
	Logger *utils.Logger
	Every  int
}

// NewLogObserver logs every 50 listings.
func NewLogObserver(logger *utils.Logger) *LogObserver {
	return &LogObserver{Logger: logger, Every: 50}
}

func (o *LogObserver) OnProgress(done, total int) {
	if o.Every > 0 && done%o.Every == 0 {
		o.Logger.Info("[analyzer] Analyzed %d/%d properties...", done, total)
	}
}

func (o *LogObserver) OnComplete(analyzed, failed int) {
	o.Logger.Info("[analyzer] Analysis complete: %d opportunities analyzed, %d rejected", analyzed, failed)
}
