package evaluation

import (
	"context"
	"errors"

	"github.com/Knetic/govaluate"
	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/rs/zerolog/log"
)

// Service evaluates gate expressions against the status of a release
type Service interface {
	Evaluate(string, string, map[string]interface{}) (bool, error)
	GetParameters(api.StatusReport) map[string]interface{}
}

// NewService returns a new evaluation.Service
func NewService(ctx context.Context) (Service, error) {
	return &service{}, nil
}

type service struct {
}

func (s *service) Evaluate(releaseName, input string, parameters map[string]interface{}) (result bool, err error) {

	if input == "" {
		return false, errors.New("Gate expression is empty")
	}

	log.Info().Msgf("[%v] Evaluating gate expression \"%v\" with parameters \"%v\"", releaseName, input, parameters)

	expression, err := govaluate.NewEvaluableExpression(input)
	if err != nil {
		return
	}

	r, err := expression.Evaluate(parameters)
	if err != nil {
		return false, err
	}

	log.Info().Msgf("[%v] Result of gate expression \"%v\" is \"%v\"", releaseName, input, r)

	if result, ok := r.(bool); ok {
		return result, nil
	}

	return false, errors.New("Result of evaluating gate expression is not of type boolean")
}

// GetParameters exposes the progress of each stage as <stage> and its completion as <stage>_complete
func (s *service) GetParameters(report api.StatusReport) map[string]interface{} {

	stages := report.Stages()

	parameters := make(map[string]interface{}, 2*len(stages)+2)
	parameters["name"] = report.Name
	parameters["complete"] = report.Complete()
	for name, stage := range stages {
		parameters[name] = stage.Progress
		parameters[name+"_complete"] = stage.Complete
	}

	return parameters
}
