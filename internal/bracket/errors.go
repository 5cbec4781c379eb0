package bracket

import "errors"

var (
	ErrMinimumTeamsNotMet = errors.New("at least 2 teams are required to create a bracket")
	ErrInvalidWinner      = errors.New("winner is not part of this match")
	ErrAlreadyInProgress  = errors.New("cannot re-shuffle after winners have been declared")
	ErrChampionNotFound   = errors.New("champion not found")
	ErrBracketExists      = errors.New("bracket already exists for this event")
)
