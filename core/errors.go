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

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates a ContextItem failed validation.
	ErrInvalidItem = errors.New("invalid context item")

	// ErrInvalidProject indicates a ContextProject failed validation.
	ErrInvalidProject = errors.New("invalid context project")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidContentType indicates an unknown ContentType value.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidVector indicates a vector with the wrong dimension.
	ErrInvalidVector = errors.New("vector dimension mismatch")

	// ErrEmptyProjectId indicates the project Id field is empty.
	ErrEmptyProjectId = errors.New("project id cannot be empty")

	// ErrEmptyProjectName indicates the project Name field is empty.
	ErrEmptyProjectName = errors.New("project name cannot be empty")
)
