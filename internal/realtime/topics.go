package realtime

import "github.com/google/uuid"

func ProjectTopic(id uuid.UUID) string { return "project:" + id.String() }
