package coordination

import "errors"

var (
	ErrCoordinationNotFound   = errors.New("coordination not found")
	ErrCoordinationNameExists = errors.New("a coordination with this name already exists")
	ErrCoordinationNotEmpty   = errors.New("coordination still has members")
	ErrCoordinatorRoleMissing = errors.New("coordinators must hold the coordenador role")
)
