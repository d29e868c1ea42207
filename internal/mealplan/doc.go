// Package mealplan defines the domain model for asynchronous meal plan
// generation: the generation parameters, the durable PlanRecord and its
// lifecycle state machine, and the versioned result payload schema.
//
// A PlanRecord is created in [StatePending] by the submission gateway,
// moved through [StateProcessing] by exactly one worker, and ends in either
// [StateCompleted] with a [GeneratedPlan] attached or [StateFailed] with an
// [ErrorInfo] attached. Terminal states are never left; parameters never
// mutate after creation. Regenerating a plan means creating a new record.
package mealplan
