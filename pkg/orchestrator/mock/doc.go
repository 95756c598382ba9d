/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

//go:generate mockgen -package=mock_orchestrator -destination=mock_driver.go github.com/yeti-teti/Caesarion/pkg/orchestrator Driver

package mock_orchestrator
