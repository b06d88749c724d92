// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateItem validates a ContextItem according to domain rules.
//
// Validation rules:
//   - Title and Content must not be empty
//   - ContentType must be one of the known values
//   - Vector must be empty or exactly dimension long
//
// NOT validated (populated by the store or the mutation pipeline):
//   - ID (0 is valid before the database sequence assigns one)
//   - Timestamps
//   - VectorHash
func ValidateItem(item *ContextItem, dimension int) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyTitle)
	}

	if item.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyContent)
	}

	if !item.ContentType.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidItem, ErrInvalidContentType, item.ContentType)
	}

	if len(item.Vector) != 0 && len(item.Vector) != dimension {
		return fmt.Errorf("%w: %w: got %d, want %d",
			ErrInvalidItem, ErrInvalidVector, len(item.Vector), dimension)
	}

	return nil
}

// ValidateProject validates a ContextProject according to domain rules.
//
// Validation rules:
//   - Id must not be empty (user-chosen string key)
//   - Name must not be empty
func ValidateProject(project *ContextProject) error {
	if project == nil {
		return fmt.Errorf("%w: project is nil", ErrInvalidProject)
	}

	if project.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProject, ErrEmptyProjectId)
	}

	if project.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProject, ErrEmptyProjectName)
	}

	return nil
}
