package interfaces

import "snap_behat/domain/entities"

// ArtifactStore keeps what a run leaves behind: page dumps of failed steps and the run report
type ArtifactStore interface {
	// SaveDump writes the screenshot and HTML under a name derived from label
	SaveDump(label, url string, screenshot []byte, html string) (entities.FailDump, error)

	// Dumps lists saved dumps, oldest first
	Dumps() ([]entities.FailDump, error)

	// SaveReport writes the scenario results of a run
	SaveReport(results []entities.ScenarioResult) error

	// LoadReport reads the last saved report
	LoadReport() ([]entities.ScenarioResult, error)
}
